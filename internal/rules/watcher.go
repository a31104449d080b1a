package rules

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads an Engine when its rules file changes on disk, so
// vocabulary fixes can be edited while the app is running. The containing
// directory is watched because editors usually replace the file.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching the engine's rules file. onError receives reload
// failures; the previous rule set stays active in that case.
func Watch(engine *Engine, onError func(error)) (*Watcher, error) {
	if engine.path == "" {
		return nil, fmt.Errorf("rules engine has no file to watch")
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create rules watcher: %w", err)
	}

	dir := filepath.Dir(engine.path)
	if err := fs.Add(dir); err != nil {
		_ = fs.Close()
		return nil, fmt.Errorf("failed to watch rules directory %q: %w", dir, err)
	}

	w := &Watcher{fs: fs, done: make(chan struct{})}
	target := filepath.Clean(engine.path)
	debounced := debounce.New(500 * time.Millisecond)

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fs.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				debounced(func() {
					if err := engine.Reload(); err != nil && onError != nil {
						onError(err)
					}
				})
			case err, ok := <-fs.Errors:
				if !ok {
					return
				}
				if err != nil && onError != nil {
					onError(err)
				}
			}
		}
	}()

	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fs.Close()
	<-w.done
	return err
}
