package app

import (
	"context"
	"fmt"

	"github.com/vk/slangbuild/internal/ctxlog"
	"github.com/vk/slangbuild/internal/notify"
	"github.com/vk/slangbuild/internal/shader"
)

// Run builds every shader once. In watch mode it then keeps rebuilding on
// changes until ctx is cancelled; a failed batch is logged and does not stop
// the watcher.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "compiler", a.config.CompilerPath, "watch", a.config.Watch)

	if a.config.HealthcheckPort > 0 {
		stop, err := a.startHealthcheckServer(ctx, a.config.HealthcheckPort)
		if err != nil {
			return &ConfigError{Field: "healthcheck-port", Err: err}
		}
		defer stop()
	}

	var observer shader.Observer
	if a.config.NotifyURL != "" {
		publisher, err := notify.Dial(ctx, a.config.NotifyOptions())
		if err != nil {
			return &ConfigError{Field: "notify.url", Err: err}
		}
		defer publisher.Close()
		observer = publisher
	}

	driver := shader.NewDriver(a.config.DriverOptions(), a.compiler, observer)

	err := a.runBatch(ctx, driver)
	if !a.config.Watch {
		return err
	}
	if err != nil {
		a.logger.Error("Build failed, waiting for changes.", "error", err)
	}
	return a.watch(ctx, driver)
}

// runBatch runs one fail-fast pass over the source tree.
func (a *App) runBatch(ctx context.Context, driver *shader.Driver) error {
	opts := driver.Options()
	a.logger.Info("Compiling shaders.", "source_root", opts.SourceRoot, "output_root", opts.OutputRoot)

	summary, err := driver.Run(ctx)
	a.status.record(summary, err)
	if a.batchDone != nil {
		a.batchDone(summary, err)
	}
	if err != nil {
		return fmt.Errorf("shader build failed: %w", err)
	}

	a.logger.Info("Shader build finished.", "compiled", summary.Compiled, "skipped", summary.Skipped)
	return nil
}
