package shader

import (
	"bytes"
	"context"
	"os/exec"
)

// Invocation is a single request to the external compiler.
type Invocation struct {
	Source string
	Output string
	// Args is the full argument list, excluding the executable itself.
	Args []string
}

// Compiler runs the external shader compiler for one invocation. A non-nil
// error means the source was not compiled; stdout and stderr are whatever
// the tool wrote before exiting.
type Compiler interface {
	Compile(ctx context.Context, inv Invocation) (stdout, stderr []byte, err error)
}

// ExecCompiler runs a compiler binary as a subprocess, capturing its output
// streams instead of letting them stream to the terminal.
type ExecCompiler struct {
	Bin string
}

func NewExecCompiler(bin string) *ExecCompiler { return &ExecCompiler{Bin: bin} }

// Compile blocks until the subprocess exits. Cancelling ctx kills it.
func (c *ExecCompiler) Compile(ctx context.Context, inv Invocation) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Bin, inv.Args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
