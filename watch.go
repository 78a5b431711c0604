package postengine

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 300 * time.Millisecond

// watchContent invalidates the snapshot cache whenever a file under dir
// changes. Bursts of events are collapsed into one reload. The returned
// function stops the watcher.
func (a *App) watchContent(dir string) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addDirs(watcher, dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		var timer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						if err := addDirs(watcher, event.Name); err != nil {
							a.Echo.Logger.Warnf("watch %s: %v", event.Name, err)
						}
					}
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(watchDebounce, func() {
					a.Echo.Logger.Infof("content changed (%s); reloading", event.Name)
					a.Cache.Invalidate()
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.Echo.Logger.Errorf("content watcher: %v", err)
			case <-done:
				if timer != nil {
					timer.Stop()
				}
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}

// addDirs watches root and every directory below it.
func addDirs(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
