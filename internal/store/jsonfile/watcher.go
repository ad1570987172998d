package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	debounceDelay   = 100 * time.Millisecond
	eventBufferSize = 16
)

// ChangeEvent reports that a watched file was written.
type ChangeEvent struct {
	Name      string
	Timestamp time.Time
}

// Watcher reports writes to files in one directory whose base name matches a
// glob pattern. Bursts of events are collapsed into one notification.
type Watcher struct {
	dir     string
	pattern string
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	events chan ChangeEvent

	mu       sync.Mutex
	debounce *time.Timer
	closed   bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWatcher watches dir for files matching pattern (doublestar syntax, e.g.
// "violations.db*"). The directory is created if it doesn't exist.
func NewWatcher(dir, pattern string, logger zerolog.Logger) (*Watcher, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		dir:     dir,
		pattern: pattern,
		watcher: fw,
		logger:  logger,
		events:  make(chan ChangeEvent, eventBufferSize),
		cancel:  cancel,
	}

	w.wg.Add(1)
	go w.run(ctx)

	return w, nil
}

// Events delivers debounced change notifications. It is closed by Close.
func (w *Watcher) Events() <-chan ChangeEvent {
	return w.events
}

// Close stops watching and closes the events channel.
func (w *Watcher) Close() error {
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	if !w.closed {
		w.closed = true
		close(w.events)
	}
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Str("dir", w.dir).Msg("file watcher error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	if ok, _ := doublestar.Match(w.pattern, name); !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(debounceDelay, func() { w.notify(name) })
}

func (w *Watcher) notify(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	select {
	case w.events <- ChangeEvent{Name: name, Timestamp: time.Now()}:
	default:
		// a notification is already pending
	}
}
