package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor emits on save.
const DefaultDebounce = 100 * time.Millisecond

type watchOptions struct {
	log      *slog.Logger
	debounce time.Duration
}

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

func WatchLogger(l *slog.Logger) WatchOption {
	return func(o *watchOptions) { o.log = l }
}

func WatchDebounce(d time.Duration) WatchOption {
	return func(o *watchOptions) { o.debounce = d }
}

// Watch calls onChange, from its own goroutine, once a burst of writes to
// path has been quiet for the debounce period. The parent directory is
// watched so a file replaced by rename is still seen, and the file need
// not exist yet. The returned stop function may be called more than once.
func Watch(path string, onChange func(), opts ...WatchOption) (stop func() error, err error) {
	o := watchOptions{log: slog.Default(), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&o)
	}

	target, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(target)); err != nil {
		fw.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		var pending *time.Timer
		defer func() {
			if pending != nil {
				pending.Stop()
			}
		}()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				o.log.Debug("config file changed", "file", target, "op", ev.Op.String())
				if pending == nil {
					pending = time.AfterFunc(o.debounce, onChange)
				} else {
					pending.Reset(o.debounce)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				o.log.Warn("config watch error", "file", target, "error", err)
			}
		}
	}()

	var once sync.Once
	var closeErr error
	stop = func() error {
		once.Do(func() {
			closeErr = fw.Close()
			<-done
		})
		return closeErr
	}
	return stop, nil
}
