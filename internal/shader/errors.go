package shader

import (
	"fmt"
	"strings"
)

// CompileError is returned when the external compiler could not be started
// or exited with a non-zero status for a source file.
type CompileError struct {
	Source   string
	Output   string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Err      error
}

// Error implements the error interface for CompileError.
func (e *CompileError) Error() string {
	stderr := strings.TrimSpace(string(e.Stderr))
	if stderr == "" {
		return fmt.Sprintf("error compiling %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("error compiling %s: %s", e.Source, stderr)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}
