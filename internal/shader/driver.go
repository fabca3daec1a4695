package shader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vk/slangbuild/internal/ctxlog"
	"github.com/vk/slangbuild/internal/fsutil"
)

// Observer is notified about the outcome of every compiled source. Skipped
// sources are not reported.
type Observer interface {
	Compiled(ctx context.Context, result *Result)
	Failed(ctx context.Context, err *CompileError)
}

// Result describes what Compile did with a single source file.
type Result struct {
	Source      string
	Output      string
	Entrypoints []Entrypoint
	// Skipped is true when the source has no entrypoint and the compiler
	// was not invoked.
	Skipped bool
	Stdout  []byte
	Stderr  []byte
}

// Summary aggregates a batch run.
type Summary struct {
	Discovered int
	Compiled   int
	Skipped    int
	// Failed is the source that stopped the batch, if any.
	Failed string
}

// Driver compiles every entrypoint-bearing source under a source root.
type Driver struct {
	opts     Options
	compiler Compiler
	observer Observer
}

// NewDriver creates a Driver. observer may be nil.
func NewDriver(opts Options, compiler Compiler, observer Observer) *Driver {
	return &Driver{
		opts:     opts.withDefaults(),
		compiler: compiler,
		observer: observer,
	}
}

// Options returns the effective options, defaults applied.
func (d *Driver) Options() Options {
	return d.opts
}

// Compile compiles a single source file if it declares at least one
// entrypoint. Sources without one are skipped with no side effects.
func (d *Driver) Compile(ctx context.Context, sourcePath string) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("source", sourcePath)

	entrypoints, err := readEntrypoints(sourcePath)
	if err != nil {
		return nil, err
	}
	if len(entrypoints) == 0 {
		logger.Debug("No entrypoint found, skipping shared source.")
		return &Result{Source: sourcePath, Skipped: true}, nil
	}

	outputPath, err := DeriveOutputPath(d.opts.SourceRoot, d.opts.OutputRoot, sourcePath, d.opts.ArtifactExt)
	if err != nil {
		return nil, err
	}

	if d.opts.CreateOutputDirs {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory for %s: %w", outputPath, err)
		}
	}

	inv := Invocation{
		Source: sourcePath,
		Output: outputPath,
		Args:   d.opts.Args(sourcePath, outputPath),
	}

	logger.Info("Compiling shader.", "output", outputPath, "entrypoints", len(entrypoints))
	stdout, stderr, err := d.compiler.Compile(ctx, inv)
	if err != nil {
		compileErr := &CompileError{
			Source:   sourcePath,
			Output:   outputPath,
			ExitCode: -1,
			Stdout:   stdout,
			Stderr:   stderr,
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			compileErr.ExitCode = exitErr.ExitCode()
		}
		logger.Debug("Compiler reported failure.", "exit_code", compileErr.ExitCode)
		if d.observer != nil {
			d.observer.Failed(ctx, compileErr)
		}
		return nil, compileErr
	}

	result := &Result{
		Source:      sourcePath,
		Output:      outputPath,
		Entrypoints: entrypoints,
		Stdout:      stdout,
		Stderr:      stderr,
	}
	if d.observer != nil {
		d.observer.Compiled(ctx, result)
	}
	return result, nil
}

// Run compiles every source under the source root in traversal order. It
// stops at the first error and returns the summary collected so far along
// with that error.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	logger := ctxlog.FromContext(ctx)
	summary := &Summary{}

	if _, err := os.Stat(d.opts.SourceRoot); errors.Is(err, os.ErrNotExist) {
		logger.Warn("Source root does not exist, nothing to compile.", "source_root", d.opts.SourceRoot)
		return summary, nil
	}

	logger.Debug("Walking source root.", "source_root", d.opts.SourceRoot, "extension", d.opts.SourceExt)
	err := fsutil.WalkFilesByExtension(d.opts.SourceRoot, d.opts.SourceExt, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		summary.Discovered++

		result, err := d.Compile(ctx, path)
		if err != nil {
			summary.Failed = path
			return err
		}
		if result.Skipped {
			summary.Skipped++
		} else {
			summary.Compiled++
		}
		return nil
	})
	if err != nil {
		return summary, err
	}

	logger.Debug("Batch finished.", "discovered", summary.Discovered, "compiled", summary.Compiled, "skipped", summary.Skipped)
	return summary, nil
}
