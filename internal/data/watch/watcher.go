package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/quotatray/quotatray/internal/util"
)

// DefaultDebounce is how long the watcher waits after the last filesystem
// event before raising its signal. Claude writes records in bursts, one
// burst per response, so the trailing edge is the interesting one.
const DefaultDebounce = 500 * time.Millisecond

// Watcher raises a coalesced "something changed" signal whenever .jsonl
// files under the root are created, written, renamed or removed. It carries
// no payload; the tracker re-stats the tree to find out what actually
// happened.
type Watcher struct {
	watcher   *fsnotify.Watcher
	signal    chan struct{}
	debounce  time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// New watches the directory tree rooted at root. A missing root is not an
// error; the watcher just stays quiet and the caller's periodic rescans
// cover discovery.
func New(root string, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fsw,
		signal:   make(chan struct{}, 1),
		debounce: debounce,
		done:     make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}

	go w.pump()
	return w, nil
}

// Signal delivers at most one pending notification regardless of how many
// filesystem events produced it.
func (w *Watcher) Signal() <-chan struct{} {
	return w.signal
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

// addTree recursively watches every directory under root. fsnotify watches
// are per-directory, so new subdirectories are added as they appear.
func (w *Watcher) addTree(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) pump() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.signal <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			util.LogWarnf("File watch error: %v", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// handleEvent reports whether the event should arm the debounce timer.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// A new project directory. Files may have landed inside it
			// before the watch takes effect, so signal a rescan too.
			if err := w.addTree(event.Name); err != nil {
				util.LogWarnf("Watch new directory %s: %v", event.Name, err)
			}
			return true
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".jsonl") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove)
}
