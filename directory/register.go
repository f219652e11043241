package directory

import (
	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

func init() {
	openack.RegisterDirectory("file", func(config openack.DirectoryConfig) (openack.Directory, error) {
		if config.PeopleFile == "" {
			return nil, errors.ErrDirectoryConfigInvalid
		}
		provider, err := NewProvider(config.PeopleFile, config.TokenFile, nil)
		if err != nil {
			return nil, err
		}
		// watch enables fsnotify-based auto reload of the backing files.
		if config.Options["watch"] == "true" {
			if err := provider.Watch(); err != nil {
				return nil, err
			}
		}
		return provider, nil
	})
}
