package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ChangeCallback is invoked with the path of a document that was created,
// modified, removed, or renamed after events have settled.
type ChangeCallback func(path string)

// Watcher monitors the documents folder for changes. The prompt of a running
// session is frozen at construction, so the watcher's job is purely to
// report that the corpus on disk has drifted from it.
type Watcher struct {
	watcher            *fsnotify.Watcher
	root               string
	stabilityThreshold time.Duration
	onChange           ChangeCallback
	logger             zerolog.Logger
	done               chan struct{}
	debounceTimers     map[string]*time.Timer
	debounceMu         sync.Mutex
	stopOnce           sync.Once
}

// WatcherConfig holds configuration for a Watcher.
type WatcherConfig struct {
	// Root is the documents folder to monitor.
	Root string

	// StabilityThreshold is how long a file must stay quiet before its
	// change is reported. Zero means 100ms.
	StabilityThreshold time.Duration

	// OnChange receives each settled change.
	OnChange ChangeCallback

	Logger zerolog.Logger
}

// NewWatcher creates a watcher over the documents folder.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if cfg.StabilityThreshold == 0 {
		cfg.StabilityThreshold = 100 * time.Millisecond
	}

	return &Watcher{
		watcher:            watcher,
		root:               cfg.Root,
		stabilityThreshold: cfg.StabilityThreshold,
		onChange:           cfg.OnChange,
		logger:             cfg.Logger,
		done:               make(chan struct{}),
		debounceTimers:     make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the folder and all its subdirectories.
func (w *Watcher) Start() error {
	if err := w.addDirectoryRecursive(w.root); err != nil {
		return fmt.Errorf("failed to watch documents folder: %w", err)
	}

	go w.eventLoop()

	w.logger.Info().Str("root", w.root).Msg("Documents watcher started")
	return nil
}

// Stop stops the watcher and cancels pending debounce timers. Safe to call
// more than once.
func (w *Watcher) Stop() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})

	w.debounceMu.Lock()
	for _, timer := range w.debounceTimers {
		timer.Stop()
	}
	clear(w.debounceTimers)
	w.debounceMu.Unlock()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	w.logger.Info().Msg("Documents watcher stopped")
	return nil
}

func (w *Watcher) eventLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("Watcher error")

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.shouldIgnore(event.Name) {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	w.debounceEvent(event)
}

// debounceEvent coalesces rapid events for the same file behind one timer.
func (w *Watcher) debounceEvent(event fsnotify.Event) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, exists := w.debounceTimers[event.Name]; exists {
		timer.Stop()
	}

	eventCopy := event

	w.debounceTimers[event.Name] = time.AfterFunc(w.stabilityThreshold, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, eventCopy.Name)
		w.debounceMu.Unlock()

		select {
		case <-w.done:
			return
		default:
			w.processEvent(eventCopy)
		}
	})
}

func (w *Watcher) processEvent(event fsnotify.Event) {
	// A created directory needs its own watch so files inside it are seen.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addDirectoryRecursive(event.Name)
		}
	}

	w.logger.Debug().
		Str("path", event.Name).
		Str("op", event.Op.String()).
		Msg("Document changed on disk")

	if w.onChange != nil {
		w.onChange(event.Name)
	}
}

func (w *Watcher) addDirectoryRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if w.shouldIgnore(walkPath) {
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if err := w.watcher.Add(walkPath); err != nil {
			w.logger.Warn().Err(err).Str("path", walkPath).Msg("Failed to watch path")
		}
		return nil
	})
}

// shouldIgnore mirrors the loader's skip rules so the watcher never reports
// files the corpus would not contain.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.Clean(rel), string(filepath.Separator)) {
		if len(part) > 0 && part[0] == '.' {
			return true
		}
	}
	return false
}
