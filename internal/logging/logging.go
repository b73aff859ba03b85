// Package logging provides categorized zap logging for nerdbook. The TUI
// owns the terminal, so logs go to a file under the state directory; stderr
// stays clean. Get returns a no-op logger until Initialize runs, so library
// code can log unconditionally.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category names one logging subsystem.
type Category string

const (
	CategoryBoot   Category = "boot"
	CategoryRender Category = "render"
	CategoryKernel Category = "kernel"
	CategoryStore  Category = "store"
)

var (
	mu      sync.RWMutex
	root    *zap.Logger
	loggers = map[Category]*zap.Logger{}
)

// Initialize opens the log file and installs the root logger. debug selects
// the debug level and development encoding.
func Initialize(dir string, debug bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, "nerdbook.log")

	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	root = logger
	loggers = map[Category]*zap.Logger{}
	mu.Unlock()

	Get(CategoryBoot).Info("logging initialized",
		zap.String("path", path),
		zap.Bool("debug", debug))
	return nil
}

// Get returns the logger for a category, creating it on first use. Before
// Initialize it returns zap.NewNop().
func Get(category Category) *zap.Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	r := root
	mu.RUnlock()

	if r == nil {
		return zap.NewNop()
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	l := r.Named(string(category))
	loggers[category] = l
	return l
}

// Sync flushes buffered log entries. Call at shutdown.
func Sync() {
	mu.RLock()
	r := root
	mu.RUnlock()
	if r != nil {
		_ = r.Sync()
	}
}
