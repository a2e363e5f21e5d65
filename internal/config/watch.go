package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"tools.zach/dev/sigdemo/internal/paths"
)

// ///////////////////////////////////////////////
// Watcher
// ///////////////////////////////////////////////

// Watcher reloads config.toml when it changes on disk. It watches the data
// directory rather than the file so editors that save by rename are seen.
// fsnotify is primary; stat polling is the fallback.
type Watcher struct {
	// dir is the data directory holding config.toml.
	dir string
	// updates delivers each successfully reloaded config. Buffered to 1 and
	// replaced on overflow so a slow reader only sees the latest.
	updates chan *Config
	// done is closed by [Watcher.Close].
	done chan struct{}
	// mu guards fsw, which the watch goroutine clears on fallback.
	mu  sync.Mutex
	fsw *fsnotify.Watcher
	// once makes Close idempotent.
	once sync.Once
	// polling is true once the watcher has fallen back to polling.
	polling atomic.Bool
	// pollInterval is the stat interval in polling mode.
	pollInterval time.Duration
}

// NewWatcher starts watching dataDir for config changes.
func NewWatcher(dataDir string) (*Watcher, error) {
	return newWatcher(dataDir, 2*time.Second)
}

func newWatcher(dataDir string, pollInterval time.Duration) (*Watcher, error) {
	if _, err := os.Stat(dataDir); err != nil {
		return nil, fmt.Errorf("watch config dir: %w", err)
	}
	w := &Watcher{
		dir:          dataDir,
		updates:      make(chan *Config, 1),
		done:         make(chan struct{}),
		pollInterval: pollInterval,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, polling config", "error", err)
		w.startPolling()
		return w, nil
	}
	if err := fsw.Add(dataDir); err != nil {
		slog.Info("cannot watch config dir, polling", "path", dataDir, "error", err)
		fsw.Close()
		w.startPolling()
		return w, nil
	}
	w.fsw = fsw
	go w.watch(fsw)
	return w, nil
}

// Updates returns the channel of reloaded configs.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *Watcher) Polling() bool {
	return w.polling.Load()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
			w.fsw = nil
		}
	})
	return err
}

func (w *Watcher) isConfig(name string) bool {
	return filepath.Base(name) == paths.ConfigFile
}

// watch forwards write/create events for config.toml to reload. An fsnotify
// error switches the watcher to polling.
func (w *Watcher) watch(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && w.isConfig(event.Name) {
				w.reload()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to config polling", "error", err)
			w.mu.Lock()
			if w.fsw != nil {
				w.fsw.Close()
				w.fsw = nil
			}
			w.mu.Unlock()
			w.startPolling()
			return
		}
	}
}

func (w *Watcher) startPolling() {
	w.polling.Store(true)
	go w.poll()
}

// poll stats config.toml and reloads when its modification time advances.
func (w *Watcher) poll() {
	path := filepath.Join(w.dir, paths.ConfigFile)
	var lastMod time.Time
	if info, err := os.Stat(path); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				continue
			}
			if info.ModTime().After(lastMod) {
				lastMod = info.ModTime()
				w.reload()
			}
		}
	}
}

// reload parses the config and publishes it. Invalid files are logged and
// skipped so the running settings stay in effect.
func (w *Watcher) reload() {
	cfg, err := Load(w.dir)
	if err != nil {
		slog.Warn("config reload rejected", "error", err)
		return
	}
	slog.Debug("config reloaded", "path", filepath.Join(w.dir, paths.ConfigFile))
	for {
		select {
		case w.updates <- cfg:
			return
		default:
		}
		// Drop the stale pending config and retry.
		select {
		case <-w.updates:
		default:
		}
	}
}
