// Package reload rebuilds a parser registry when its schema files change.
package reload

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Elonsoft/defparser"
)

// ErrStopped is returned by Start once Stop has been called.
var ErrStopped = errors.New("reload: watcher stopped")

// BuildFunc defines every parser from scratch.
type BuildFunc func() (*defparser.Registry, error)

// Watcher calls Build whenever one of the watched files changes and hands
// the new registry to every OnChange callback. A failed build keeps the
// previous registry.
type Watcher struct {
	mu       sync.Mutex
	build    BuildFunc
	files    map[string]bool // absolute paths
	logger   zerolog.Logger
	watcher  *fsnotify.Watcher
	onChange []func(*defparser.Registry)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher for the given schema files. Nothing is watched until
// Start is called.
func New(files []string, build BuildFunc, logger zerolog.Logger) (*Watcher, error) {
	w := &Watcher{
		build:  build,
		files:  make(map[string]bool, len(files)),
		logger: logger,
		stopCh: make(chan struct{}),
	}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// OnChange registers fn to receive every successfully rebuilt registry.
func (w *Watcher) OnChange(fn func(*defparser.Registry)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Reload rebuilds the registry and notifies the listeners.
func (w *Watcher) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	reg, err := w.build()
	if err != nil {
		w.logger.Error().Err(err).Msg("schema reload failed, keeping previous parsers")
		return fmt.Errorf("reload schemas: %w", err)
	}
	for _, fn := range w.onChange {
		fn(reg)
	}
	w.logger.Info().Int("parsers", len(reg.Parsers())).Msg("schemas reloaded")
	return nil
}

// Start watches the directories of the schema files. It may run
// concurrently with Stop. Directories rather than
// files are watched so editors that save by rename are still seen.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	dirs := map[string]bool{}
	for f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return fmt.Errorf("watch directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	w.mu.Lock()
	select {
	case <-w.stopCh:
		w.mu.Unlock()
		fw.Close()
		return ErrStopped
	default:
	}
	w.watcher = fw
	w.mu.Unlock()

	go w.watchLoop(fw)

	w.logger.Info().Int("files", len(w.files)).Msg("watching schema files for changes")
	return nil
}

// WatchSignals reloads on SIGHUP until Stop is called.
func (w *Watcher) WatchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)

	go func() {
		for {
			select {
			case <-sigCh:
				w.logger.Info().Msg("received SIGHUP, reloading schemas")
				_ = w.Reload()
			case <-w.stopCh:
				signal.Stop(sigCh)
				return
			}
		}
	}()
}

// Stop ends file and signal watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		fw := w.watcher
		w.mu.Unlock()
		if fw != nil {
			fw.Close()
		}
	})
}

func (w *Watcher) watchLoop(fw *fsnotify.Watcher) {
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug().
					Str("event", event.Op.String()).
					Str("file", event.Name).
					Msg("schema file changed")
				_ = w.Reload()
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-w.stopCh:
			return
		}
	}
}
