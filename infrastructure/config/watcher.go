package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DynamicConfig is the part of the YAML file applied without a restart.
type DynamicConfig struct {
	LogLevel string `yaml:"logLevel"`
}

// Watcher watches the YAML file and applies dynamic settings on change.
type Watcher struct {
	path     string
	level    zap.AtomicLevel
	logger   *zap.Logger
	debounce time.Duration

	mu       sync.RWMutex
	current  DynamicConfig
	onChange []func(DynamicConfig)
}

// NewWatcher creates a watcher for path driving level.
func NewWatcher(path string, level zap.AtomicLevel, logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	current, err := loadDynamic(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	return &Watcher{
		path:     path,
		level:    level,
		logger:   logger,
		debounce: 100 * time.Millisecond,
		current:  current,
	}, nil
}

// OnChange registers a callback for configuration changes
func (w *Watcher) OnChange(handler func(DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// Current returns the last applied dynamic configuration.
func (w *Watcher) Current() DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	// The directory is watched so that editors saving via rename are seen.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Configuration watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	next, err := loadDynamic(w.path)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}
	if err := w.apply(next); err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
	}
}

func (w *Watcher) apply(next DynamicConfig) error {
	if next.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(next.LogLevel)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", next.LogLevel, err)
		}
		if lvl != w.level.Level() {
			w.logger.Info("Log level changed",
				zap.String("from", w.level.Level().String()),
				zap.String("to", lvl.String()))
			w.level.SetLevel(lvl)
		}
	}

	w.mu.Lock()
	w.current = next
	handlers := append([]func(DynamicConfig){}, w.onChange...)
	w.mu.Unlock()

	for _, h := range handlers {
		h(next)
	}
	return nil
}

func loadDynamic(path string) (DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DynamicConfig{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var dc DynamicConfig
	if err := yaml.Unmarshal(data, &dc); err != nil {
		return DynamicConfig{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	return dc, nil
}
