package app

import (
	"io"
	"log/slog"
	"time"

	"github.com/vk/slangbuild/internal/shader"
)

const defaultWatchDebounce = 200 * time.Millisecond

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	compiler shader.Compiler

	status        buildStatus
	watchDebounce time.Duration
	// batchDone, when set, receives the outcome of every batch. Tests use it
	// to synchronise with watch mode.
	batchDone func(*shader.Summary, error)
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. A nil compiler runs
// the configured compiler binary as a subprocess.
func NewApp(outW io.Writer, cfg *Config, compiler shader.Compiler) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	if compiler == nil {
		compiler = shader.NewExecCompiler(cfg.CompilerPath)
	}

	return &App{
		outW:          outW,
		logger:        logger,
		config:        cfg,
		compiler:      compiler,
		watchDebounce: defaultWatchDebounce,
	}
}

// Config returns the resolved configuration. This is primarily for testing.
func (a *App) Config() *Config {
	return a.config
}
