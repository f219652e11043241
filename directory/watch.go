package directory

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch starts reloading the provider whenever a backing file
// changes. The parent directories are watched rather than the files
// themselves, because editors and atomic-save tools replace files by
// rename, which drops a direct file watch.
func (p *Provider) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dirs := map[string]struct{}{
		filepath.Dir(p.peoplePath): {},
	}
	if p.tokenPath != "" {
		dirs[filepath.Dir(p.tokenPath)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close()
			return err
		}
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.watcher = watcher
	p.watchDone = done
	p.mu.Unlock()

	// The loop works off its own references so Close can clear the
	// provider fields without racing a live select iteration.
	go p.watchLoop(watcher, done)
	return nil
}

func (p *Provider) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	targets := map[string]struct{}{
		filepath.Clean(p.peoplePath): {},
	}
	if p.tokenPath != "" {
		targets[filepath.Clean(p.tokenPath)] = struct{}{}
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if _, ours := targets[filepath.Clean(event.Name)]; !ours {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(); err != nil {
				p.log.Warn("directory reload failed", "file", event.Name, "error", err)
				continue
			}
			p.log.Info("directory reloaded", "file", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.log.Warn("directory watcher error", "error", err)
		case <-done:
			return
		}
	}
}
