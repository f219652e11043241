package mailbox

import (
	"github.com/openack/openack"
	"github.com/openack/openack/errors"
)

func init() {
	openack.Register("mailbox", func(config openack.StoreConfig, deps openack.Deps) (openack.MailboxStore, error) {
		if config.BasePath == "" {
			return nil, errors.ErrStoreConfigInvalid
		}
		if deps.Directory == nil {
			return nil, errors.ErrStoreConfigInvalid
		}
		return New(config.BasePath, deps.Directory, deps.TransactionLog, deps.Logger), nil
	})
}
