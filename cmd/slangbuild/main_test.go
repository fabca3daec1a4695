package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/slangbuild/internal/cli"
)

// fakeSlangc is a stand-in for the real compiler: it records its arguments
// next to the artifact and fails for sources containing FAIL.
const fakeSlangc = `#!/bin/sh
src="$1"
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; fi
  shift
done
if grep -q FAIL "$src"; then
  echo "$src(1): error 1: forced failure" >&2
  exit 1
fi
echo "$src" >> "$LOG"
printf 'SPIRV' > "$out"
`

type fixture struct {
	src, out, log string
	env           map[string]string
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a POSIX shell script")
	}

	base := t.TempDir()
	f := &fixture{
		src: filepath.Join(base, "slang"),
		out: filepath.Join(base, "spirv"),
		log: filepath.Join(base, "invocations.log"),
	}
	bin := filepath.Join(base, "slangc")
	require.NoError(t, os.WriteFile(bin, []byte(fakeSlangc), 0o755))
	for name, content := range files {
		p := filepath.Join(f.src, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	}
	f.env = map[string]string{"SLANGC": bin}
	return f
}

func (f *fixture) lookupEnv(key string) (string, bool) {
	v, ok := f.env[key]
	return v, ok
}

// run executes the CLI against the fixture tree. The fake compiler finds its
// log through LOG, inherited from the test process environment.
func (f *fixture) run(t *testing.T, extra ...string) *cli.ExitError {
	t.Helper()
	t.Setenv("LOG", f.log)
	args := append([]string{"-source-root", f.src, "-output-root", f.out}, extra...)
	return cli.FromRunError(run(context.Background(), &bytes.Buffer{}, args, f.lookupEnv))
}

func TestRun_CompilesEntrypointsOnly(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"foo/bar.slang":    `[[shader("fragment")]] float4 main(VSOut i) : SV_Target { return 1; }`,
		"foo/common.slang": `struct VSOut { float4 pos : SV_Position; };`,
	})

	// --- Act ---
	exitErr := f.run(t, "-mkdir")

	// --- Assert ---
	require.Nil(t, exitErr)
	require.FileExists(t, filepath.Join(f.out, "foo", "bar.spv"))
	require.NoFileExists(t, filepath.Join(f.out, "foo", "common.spv"))

	log, err := os.ReadFile(f.log)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(f.src, "foo", "bar.slang")+"\n", string(log))
}

func TestRun_FailureStopsTheBatch(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.slang": `[[shader("vertex")]] VSOut vs() {}`,
		"b.slang": `[[shader("fragment")]] float4 fs() {} // FAIL`,
		"c.slang": `[[shader("compute")]] void cs() {}`,
	})
	require.NoError(t, os.MkdirAll(f.out, 0o755))

	exitErr := f.run(t)

	require.NotNil(t, exitErr)
	require.Equal(t, cli.ExitBuildFailed, exitErr.Code)
	require.Contains(t, exitErr.Message, "forced failure")
	require.FileExists(t, filepath.Join(f.out, "a.spv"))
	require.NoFileExists(t, filepath.Join(f.out, "c.spv"), "no file may be compiled after a failure")
}

func TestRun_MissingOutputDirectoryIsACompilerFailure(t *testing.T) {
	f := newFixture(t, map[string]string{
		"nested/a.slang": `[[shader("vertex")]] VSOut vs() {}`,
	})

	exitErr := f.run(t)

	require.NotNil(t, exitErr)
	require.Equal(t, cli.ExitBuildFailed, exitErr.Code)
}

func TestRun_MissingCompiler(t *testing.T) {
	f := newFixture(t, map[string]string{
		"a.slang": `[[shader("vertex")]] VSOut vs() {}`,
	})
	delete(f.env, "SLANGC")

	exitErr := f.run(t, "-mkdir")

	require.NotNil(t, exitErr)
	require.Equal(t, cli.ExitUsage, exitErr.Code)
	require.Contains(t, exitErr.Message, "SLANGC")
	require.NoDirExists(t, f.out, "no work may happen without a compiler")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"}, func(string) (string, bool) { return "", false })

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"}, func(string) (string, bool) { return "slangc", true })

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
