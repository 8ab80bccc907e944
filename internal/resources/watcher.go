package resources

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay collapses a burst of file events into one reload.
const reloadDelay = 500 * time.Millisecond

type dirWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

func watchDir(
	directory string,
	callback func(),
	logger *slog.Logger,
) (
	*dirWatcher,
	error,
) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = watcher.Add(directory)
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &dirWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}

	reload := make(chan struct{})
	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		scheduleReload(reload, callback, w.done)
	}()
	go func() {
		defer w.wg.Done()
		handleWatcher(watcher, reload, w.done, logger)
	}()
	return w, nil
}

// Close stops watching and waits for a pending reload to finish.
func (w *dirWatcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func handleWatcher(
	watcher *fsnotify.Watcher,
	reload chan<- struct{},
	done <-chan struct{},
	logger *slog.Logger,
) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				select {
				case reload <- struct{}{}:
				case <-done:
					return
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("resource watcher error", "error", err)
		}
	}
}

func scheduleReload(
	reload <-chan struct{},
	callback func(),
	done <-chan struct{},
) {
	var timer *time.Timer
	var c <-chan time.Time
	for {
		select {
		case <-done:
			if timer != nil {
				timer.Stop()
			}
			return

		case <-reload:
			if timer != nil {
				timer.Reset(reloadDelay)
			} else {
				timer = time.NewTimer(reloadDelay)
				c = timer.C
			}

		case <-c:
			c = nil
			timer = nil
			callback()
		}
	}
}
