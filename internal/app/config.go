package app

import (
	"errors"
	"fmt"

	"github.com/vk/slangbuild/internal/config"
	"github.com/vk/slangbuild/internal/notify"
	"github.com/vk/slangbuild/internal/shader"
)

// CompilerEnvVar names the environment variable holding the compiler path.
const CompilerEnvVar = "SLANGC"

// CompilerFlagsEnvVar names the optional environment variable holding extra
// compiler arguments.
const CompilerFlagsEnvVar = "SLANGC_FLAGS"

// DefaultConfigPath is the build file picked up when -config is not given.
const DefaultConfigPath = "slangbuild.hcl"

// ErrCompilerNotSet is returned when no compiler path was configured.
var ErrCompilerNotSet = errors.New("environment variable " + CompilerEnvVar + " must be set to the shader compiler path")

// ConfigError reports configuration that prevents a run from starting.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config holds all the necessary configuration for an App instance to run.
// Empty string fields are unset until NewConfig resolves them.
type Config struct {
	CompilerPath string
	ConfigPath   string

	SourceRoot  string
	OutputRoot  string
	SourceExt   string
	ArtifactExt string

	Target           string
	Optimization     string
	ExtraArgs        []string
	CreateOutputDirs bool

	NotifyURL                string
	NotifyNamespace          string
	NotifyEvent              string
	NotifyFailedEvent        string
	NotifyInsecureSkipVerify bool

	Watch           bool
	HealthcheckPort int
	LogFormat       string
	LogLevel        string
}

// NewConfig resolves cfg against the optional build file and the built-in
// defaults. Values already set in cfg win over the file; the file wins over
// defaults. Extra compiler arguments from the file come before those in cfg.
func NewConfig(cfg Config, file *config.BuildFile) (*Config, error) {
	if cfg.CompilerPath == "" {
		return nil, &ConfigError{Field: CompilerEnvVar, Err: ErrCompilerNotSet}
	}

	if file == nil {
		file = &config.BuildFile{}
	}

	cfg.SourceRoot = firstNonEmpty(cfg.SourceRoot, file.SourceRoot, shader.DefaultSourceRoot)
	cfg.OutputRoot = firstNonEmpty(cfg.OutputRoot, file.OutputRoot, shader.DefaultOutputRoot)
	cfg.SourceExt = firstNonEmpty(cfg.SourceExt, file.SourceExt, shader.DefaultSourceExt)
	cfg.ArtifactExt = firstNonEmpty(cfg.ArtifactExt, file.ArtifactExt, shader.DefaultArtifactExt)
	cfg.Target = firstNonEmpty(cfg.Target, file.Compiler.Target, shader.DefaultTarget)
	cfg.Optimization = firstNonEmpty(cfg.Optimization, file.Compiler.Optimization, shader.DefaultOptimization)
	cfg.CreateOutputDirs = cfg.CreateOutputDirs || file.CreateOutputDirs

	if len(file.Compiler.ExtraArgs) > 0 {
		cfg.ExtraArgs = append(append([]string{}, file.Compiler.ExtraArgs...), cfg.ExtraArgs...)
	}

	cfg.NotifyURL = firstNonEmpty(cfg.NotifyURL, file.Notify.URL)
	cfg.NotifyNamespace = firstNonEmpty(cfg.NotifyNamespace, file.Notify.Namespace)
	cfg.NotifyEvent = firstNonEmpty(cfg.NotifyEvent, file.Notify.CompiledEvent, notify.DefaultCompiledEvent)
	cfg.NotifyFailedEvent = firstNonEmpty(cfg.NotifyFailedEvent, file.Notify.FailedEvent, notify.DefaultFailedEvent)
	cfg.NotifyInsecureSkipVerify = cfg.NotifyInsecureSkipVerify || file.Notify.InsecureSkipVerify

	cfg.LogFormat = firstNonEmpty(cfg.LogFormat, "text")
	cfg.LogLevel = firstNonEmpty(cfg.LogLevel, "info")

	if cfg.SourceExt[0] != '.' || cfg.ArtifactExt[0] != '.' {
		return nil, &ConfigError{Field: "extension", Err: fmt.Errorf("extensions must start with a dot, got %q and %q", cfg.SourceExt, cfg.ArtifactExt)}
	}

	return &cfg, nil
}

// DriverOptions returns the shader driver options for this configuration.
func (c *Config) DriverOptions() shader.Options {
	return shader.Options{
		SourceRoot:       c.SourceRoot,
		OutputRoot:       c.OutputRoot,
		SourceExt:        c.SourceExt,
		ArtifactExt:      c.ArtifactExt,
		Target:           c.Target,
		Optimization:     c.Optimization,
		ExtraArgs:        c.ExtraArgs,
		CreateOutputDirs: c.CreateOutputDirs,
	}
}

// NotifyOptions returns the publisher options for this configuration.
func (c *Config) NotifyOptions() notify.Options {
	return notify.Options{
		URL:                c.NotifyURL,
		Namespace:          c.NotifyNamespace,
		CompiledEvent:      c.NotifyEvent,
		FailedEvent:        c.NotifyFailedEvent,
		InsecureSkipVerify: c.NotifyInsecureSkipVerify,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
