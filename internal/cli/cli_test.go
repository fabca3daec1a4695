package cli_test

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/slangbuild/internal/app"
	"github.com/vk/slangbuild/internal/cli"
	"github.com/vk/slangbuild/internal/hcl"
	"github.com/vk/slangbuild/internal/shader"
)

func env(vars map[string]string) cli.LookupEnv {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func defaultConfig() *app.Config {
	return &app.Config{
		CompilerPath:      "/usr/bin/slangc",
		SourceRoot:        "assets/shaders/slang",
		OutputRoot:        "assets/shaders/spirv",
		SourceExt:         ".slang",
		ArtifactExt:       ".spv",
		Target:            "spirv",
		Optimization:      "-O3",
		NotifyEvent:       "shader_compiled",
		NotifyFailedEvent: "build_failed",
		LogFormat:         "text",
		LogLevel:          "info",
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	withSlangc := map[string]string{"SLANGC": "/usr/bin/slangc"}

	testCases := []struct {
		name           string
		args           []string
		env            map[string]string
		expectExit     bool
		expectErrCode  int
		expectedConfig func() *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name:           "Defaults with only SLANGC",
			args:           []string{},
			env:            withSlangc,
			expectedConfig: defaultConfig,
		},
		{
			name: "Happy Path with all flags",
			args: []string{
				"-source-root", "shaders/src",
				"--output-root=shaders/bin",
				"-mkdir",
				"-watch",
				"-notify-url", "http://localhost:3000/",
				"-healthcheck-port", "8080",
				"--log-level=debug",
				"--log-format=json",
			},
			env: map[string]string{"SLANGC": "/usr/bin/slangc", "SLANGC_FLAGS": `-I "shaders/common" -g`},
			expectedConfig: func() *app.Config {
				cfg := defaultConfig()
				cfg.SourceRoot = "shaders/src"
				cfg.OutputRoot = "shaders/bin"
				cfg.CreateOutputDirs = true
				cfg.Watch = true
				cfg.NotifyURL = "http://localhost:3000/"
				cfg.HealthcheckPort = 8080
				cfg.ExtraArgs = []string{"-I", "shaders/common", "-g"}
				cfg.LogLevel = "debug"
				cfg.LogFormat = "json"
				return cfg
			},
		},
		{
			name: "Positional argument for source root",
			args: []string{"my/shaders"},
			env:  withSlangc,
			expectedConfig: func() *app.Config {
				cfg := defaultConfig()
				cfg.SourceRoot = "my/shaders"
				return cfg
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			env:        withSlangc,
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.Contains(t, output, "Usage:")
				require.Contains(t, output, "SLANGC")
			},
		},
		{
			name:          "Missing SLANGC fails before anything else",
			args:          []string{},
			env:           map[string]string{},
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Empty SLANGC is treated as missing",
			args:          []string{},
			env:           map[string]string{"SLANGC": ""},
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Invalid log level returns an error",
			args:          []string{"--log-level=foo"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Invalid log format returns an error",
			args:          []string{"--log-format=yaml"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Unknown flag returns an error",
			args:          []string{"--this-is-not-a-valid-flag"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Invalid healthcheck port",
			args:          []string{"-healthcheck-port", "70000"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Source root given twice",
			args:          []string{"-source-root", "a", "b"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Unbalanced SLANGC_FLAGS",
			args:          []string{},
			env:           map[string]string{"SLANGC": "slangc", "SLANGC_FLAGS": `-I "open`},
			expectErrCode: cli.ExitUsage,
		},
		{
			name:          "Explicit build file that does not exist",
			args:          []string{"-config", "does/not/exist.hcl"},
			env:           withSlangc,
			expectErrCode: cli.ExitUsage,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			cfg, shouldExit, err := cli.Parse(tc.args, out, env(tc.env), hcl.NewLoaderWithEnv(env(tc.env)))

			// --- Assert ---
			if tc.expectErrCode != 0 {
				require.Error(t, err)
				var exitErr *cli.ExitError
				require.ErrorAs(t, err, &exitErr, "Expected error to be of type ExitError")
				require.Equal(t, tc.expectErrCode, exitErr.Code)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expectExit, shouldExit)

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig(), cfg); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestParse_BuildFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "build.hcl")
	content := `
source_root = "from/file"
output_root = "${env("OUT")}/spirv"
compiler {
  extra_args = ["-I", "common"]
}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	vars := map[string]string{"SLANGC": "slangc", "SLANGC_FLAGS": "-g", "OUT": "build"}

	// --- Act ---
	cfg, _, err := cli.Parse([]string{"-config", path, "-source-root", "from/flag"}, &bytes.Buffer{}, env(vars), hcl.NewLoaderWithEnv(env(vars)))

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, path, cfg.ConfigPath)
	require.Equal(t, "from/flag", cfg.SourceRoot, "flags override the build file")
	require.Equal(t, "build/spirv", cfg.OutputRoot)
	require.Equal(t, []string{"-I", "common", "-g"}, cfg.ExtraArgs)
}

func TestFromRunError(t *testing.T) {
	t.Parallel()

	compileErr := &shader.CompileError{
		Source:   "assets/shaders/slang/foo/bar.slang",
		ExitCode: 1,
		Stderr:   []byte("bar.slang(4): error 30015: undefined identifier 'uv'\n"),
		Err:      errors.New("exit status 1"),
	}

	testCases := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
	}{
		{
			name:        "compile error shows captured stderr",
			err:         fmt.Errorf("shader build failed: %w", compileErr),
			wantCode:    cli.ExitBuildFailed,
			wantMessage: "Error compiling assets/shaders/slang/foo/bar.slang: bar.slang(4): error 30015: undefined identifier 'uv'",
		},
		{
			name:        "compiler that could not start",
			err:         &shader.CompileError{Source: "a.slang", Err: errors.New(`exec: "slangc": executable file not found in $PATH`)},
			wantCode:    cli.ExitBuildFailed,
			wantMessage: `Error compiling a.slang: exec: "slangc": executable file not found in $PATH`,
		},
		{
			name:     "configuration error",
			err:      &app.ConfigError{Field: "notify.url", Err: errors.New("refused")},
			wantCode: cli.ExitUsage,
		},
		{
			name:     "anything else",
			err:      errors.New("permission denied"),
			wantCode: cli.ExitBuildFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := cli.FromRunError(tc.err)

			require.Equal(t, tc.wantCode, got.Code)
			if tc.wantMessage != "" {
				require.Equal(t, tc.wantMessage, got.Message)
			}
		})
	}

	require.Nil(t, cli.FromRunError(nil))
}
