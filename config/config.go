// Package config loads, saves, and hot-reloads the tilerd daemon's
// configuration from ~/.config/tilerd/config.json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Config holds the daemon's configuration.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `json:"logLevel"`
	// LogFormat is "console" or "json".
	LogFormat string `json:"logFormat"`
	// Transport selects how the daemon exposes its ipc line protocol:
	// "stdio" or "unix".
	Transport string `json:"transport"`
	// SocketPath is the unix socket path, used when Transport is "unix".
	SocketPath string `json:"socketPath"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "console",
		Transport: "stdio",
	}
}

// path returns ~/.config/tilerd/config.json.
func path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tilerd", "config.json"), nil
}

// Load loads the configuration from disk, falling back to Default if the
// file doesn't exist or the config directory can't be determined.
func Load(log *zerolog.Logger) (*Config, error) {
	cfg := Default()

	p, err := path()
	if err != nil {
		log.Error().Err(err).Msg("config: failed to resolve user config dir, using defaults")
		return cfg, nil
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", p).Msg("config: no config file, using defaults")
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", p, err)
	}
	log.Debug().Str("path", p).Msg("config: loaded")
	return cfg, nil
}

// Save writes c to ~/.config/tilerd/config.json, creating the directory if
// needed.
func (c *Config) Save() error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0644)
}

// Watcher hot-reloads the config file and notifies registered callbacks of
// every successfully parsed change. The Watcher applies nothing itself;
// what a change does is up to the callbacks (tilerd's only logs the new
// log level).
type Watcher struct {
	mu        sync.Mutex
	fsw       *fsnotify.Watcher
	log       *zerolog.Logger
	callbacks []func(*Config)
}

// NewWatcher starts watching the config file's directory (fsnotify watches
// directories, not files directly, so renames-over-the-file from editors
// and atomic config writers are still observed) and returns a Watcher ready
// to accept OnChange callbacks. Call Close when the daemon shuts down.
func NewWatcher(log *zerolog.Logger) (*Watcher, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(p)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, log: log}
	go w.run(p)
	return w, nil
}

func (w *Watcher) run(p string) {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := Load(w.log)
			if err != nil {
				w.log.Error().Err(err).Msg("config: reload failed, keeping previous configuration")
				continue
			}
			w.notify(cfg)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("config: watcher error")
		}
	}
}

func (w *Watcher) notify(cfg *Config) {
	w.mu.Lock()
	callbacks := make([]func(*Config), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// OnChange registers a callback invoked with the freshly reloaded
// configuration whenever the config file changes on disk.
func (w *Watcher) OnChange(cb func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
