package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-shellwords"
	"github.com/vk/slangbuild/internal/app"
	"github.com/vk/slangbuild/internal/config"
	"github.com/vk/slangbuild/internal/shader"
)

// Exit codes returned by the process.
const (
	ExitBuildFailed = 1
	ExitUsage       = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// LookupEnv has the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
// Configuration problems, including a missing SLANGC, are reported before any
// shader is touched.
func Parse(args []string, output io.Writer, lookupEnv LookupEnv, loader config.Loader) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("slangbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
slangbuild - compiles Slang shaders with entrypoints into SPIR-V.

Usage:
  slangbuild [options] [SOURCE_ROOT]

Arguments:
  SOURCE_ROOT
    Directory searched recursively for .slang files (default "assets/shaders/slang").

Environment:
  SLANGC         Path to the slangc compiler (required).
  SLANGC_FLAGS   Extra compiler arguments, split with shell quoting rules.

Options:
`)
		flagSet.PrintDefaults()
	}

	configFlag := flagSet.String("config", "", "Path to an HCL build file. Defaults to '"+app.DefaultConfigPath+"' when present.")
	sourceRootFlag := flagSet.String("source-root", "", "Directory containing shader sources.")
	outputRootFlag := flagSet.String("output-root", "", "Directory receiving compiled artifacts.")
	mkdirFlag := flagSet.Bool("mkdir", false, "Create missing output directories before compiling.")
	watchFlag := flagSet.Bool("watch", false, "Keep running and rebuild whenever a shader changes.")
	notifyURLFlag := flagSet.String("notify-url", "", "socket.io server that receives build events.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP build status endpoint. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	sourceRoot := *sourceRootFlag
	switch {
	case flagSet.NArg() > 1:
		return nil, false, &ExitError{Code: ExitUsage, Message: "at most one SOURCE_ROOT argument is allowed"}
	case flagSet.NArg() == 1 && sourceRoot != "":
		return nil, false, &ExitError{Code: ExitUsage, Message: "SOURCE_ROOT given both as argument and -source-root"}
	case flagSet.NArg() == 1:
		sourceRoot = flagSet.Arg(0)
	}

	if *healthPortFlag < 0 || *healthPortFlag > 65535 {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid healthcheck-port: must be between 0 and 65535"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	compilerPath, _ := lookupEnv(app.CompilerEnvVar)

	var envArgs []string
	if raw, ok := lookupEnv(app.CompilerFlagsEnvVar); ok && strings.TrimSpace(raw) != "" {
		parsed, err := shellwords.Parse(raw)
		if err != nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid %s: %v", app.CompilerFlagsEnvVar, err)}
		}
		envArgs = parsed
	}

	buildFile, err := loadBuildFile(*configFlag, loader)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	cfg, err := app.NewConfig(app.Config{
		CompilerPath:     compilerPath,
		ConfigPath:       buildFilePath(buildFile),
		SourceRoot:       sourceRoot,
		OutputRoot:       *outputRootFlag,
		ExtraArgs:        envArgs,
		CreateOutputDirs: *mkdirFlag,
		NotifyURL:        *notifyURLFlag,
		Watch:            *watchFlag,
		HealthcheckPort:  *healthPortFlag,
		LogFormat:        logFormat,
		LogLevel:         logLevel,
	}, buildFile)
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", cfg)
	return cfg, false, nil
}

// loadBuildFile loads the explicitly requested build file, or the default one
// if it exists. A missing default is not an error.
func loadBuildFile(path string, loader config.Loader) (*config.BuildFile, error) {
	if path == "" {
		if _, err := os.Stat(app.DefaultConfigPath); err != nil {
			return nil, nil
		}
		path = app.DefaultConfigPath
	}
	return loader.Load(context.Background(), path)
}

func buildFilePath(file *config.BuildFile) string {
	if file == nil {
		return ""
	}
	return file.Path
}

// FromRunError maps an error returned by App.Run to the process exit code and
// the message shown to the user. Compilation failures show the compiler's
// captured error output.
func FromRunError(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	var compileErr *shader.CompileError
	if errors.As(err, &compileErr) {
		detail := strings.TrimSpace(string(compileErr.Stderr))
		if detail == "" && compileErr.Err != nil {
			detail = compileErr.Err.Error()
		}
		return &ExitError{Code: ExitBuildFailed, Message: fmt.Sprintf("Error compiling %s: %s", compileErr.Source, detail)}
	}

	var cfgErr *app.ConfigError
	if errors.As(err, &cfgErr) {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	return &ExitError{Code: ExitBuildFailed, Message: err.Error()}
}
