package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ChangeHandler receives the previous and the reloaded configuration
type ChangeHandler func(old, updated *Config)

// ErrorHandler receives reload failures. The previous config stays active.
type ErrorHandler func(err error)

// Watcher reloads the config file when it changes on disk and notifies
// subscribers. Only settings that are safe to swap at runtime should be
// applied by handlers (log level, rate limits).
type Watcher struct {
	v        *viper.Viper
	mu       sync.RWMutex
	current  *Config
	handlers []ChangeHandler
	onError  ErrorHandler
}

// NewWatcher loads the configuration like Load and returns a watcher for it.
// path may be empty to use the default search paths.
func NewWatcher(path string) (*Watcher, error) {
	cfg, v, err := load(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{v: v, current: cfg}, nil
}

// Config returns the active configuration
func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a handler called after each successful reload
func (w *Watcher) OnChange(h ChangeHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// OnError registers the reload failure handler
func (w *Watcher) OnError(h ErrorHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = h
}

// ConfigFile returns the file being watched, empty when running on env vars only
func (w *Watcher) ConfigFile() string {
	return w.v.ConfigFileUsed()
}

// Start begins watching the config file. It is a no-op without a file.
func (w *Watcher) Start() bool {
	if w.v.ConfigFileUsed() == "" {
		return false
	}
	w.v.OnConfigChange(w.handleEvent)
	w.v.WatchConfig()
	return true
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	w.Reload()
}

// Reload re-reads the file and rebuilds the configuration
func (w *Watcher) Reload() {
	var updated *Config
	err := w.v.ReadInConfig()
	if err == nil {
		updated, err = build(w.v)
	}

	w.mu.Lock()
	if err != nil {
		onError := w.onError
		w.mu.Unlock()
		if onError != nil {
			onError(err)
		}
		return
	}
	old := w.current
	w.current = updated
	handlers := append([]ChangeHandler(nil), w.handlers...)
	w.mu.Unlock()

	for _, h := range handlers {
		h(old, updated)
	}
}
