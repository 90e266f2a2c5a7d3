package config

import (
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"moonwatch/internal/logger"
)

// CoinsWatcher holds the current symbol set and swaps it when the coins file
// changes. A file that fails validation is logged and the old set is kept.
type CoinsWatcher struct {
	path    string
	current atomic.Pointer[Coins]

	mu        sync.Mutex
	listeners []func(*Coins)
}

// NewCoinsWatcher wraps an already validated set. Call Watch to follow the
// file on disk.
func NewCoinsWatcher(path string, initial *Coins) *CoinsWatcher {
	w := &CoinsWatcher{path: path}
	w.current.Store(initial)
	return w
}

// Coins returns the active symbol set.
func (w *CoinsWatcher) Coins() *Coins {
	return w.current.Load()
}

// OnChange registers fn to run after every accepted reload.
func (w *CoinsWatcher) OnChange(fn func(*Coins)) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.listeners = append(w.listeners, fn)
	w.mu.Unlock()
}

// Watch starts following the coins file through viper's fsnotify watcher.
// The watch lasts for the life of the process.
func (w *CoinsWatcher) Watch() {
	v := viper.New()
	v.SetConfigFile(w.path)
	v.SetConfigType("yaml")
	v.OnConfigChange(func(ev fsnotify.Event) {
		if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		w.Reload()
	})
	v.WatchConfig()
	logger.Debugf("watching coins config %s", w.path)
}

// Reload re-reads the coins file and reports whether the new set was taken.
func (w *CoinsWatcher) Reload() bool {
	coins, err := LoadCoins(w.path)
	if err != nil {
		logger.Warnf("coins config reload ignored: %v", err)
		return false
	}
	w.current.Store(coins)
	logger.Infof("coins config reloaded: %d symbols", coins.Len())

	w.mu.Lock()
	listeners := append([]func(*Coins){}, w.listeners...)
	w.mu.Unlock()
	for _, fn := range listeners {
		fn(coins)
	}
	return true
}
