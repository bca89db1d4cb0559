// Package executor executes external programs capturing their output.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result holds the output and exit status of a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a program with arguments.
type Executor interface {
	Execute(ctx context.Context, args []string) (*Result, error)
}

// ErrExit is returned (wrapped) when the program ran and exited with a non zero code,
// the Result is still returned with the captured output.
var ErrExit = errors.New("program exited with non zero code")

// ProgramExecutor executes a specific program.
type ProgramExecutor struct {
	program string
}

// NewProgramExecutor returns an executor for a program.
func NewProgramExecutor(program string) *ProgramExecutor {
	return &ProgramExecutor{program: program}
}

// Execute runs the program. When the program can't be started an error is returned
// without result. A non zero exit returns both the result and an error wrapping ErrExit.
func (p *ProgramExecutor) Execute(ctx context.Context, args []string) (*Result, error) {
	cmd := exec.CommandContext(ctx, p.program, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf("%s exited with code %d: %w", p.program, res.ExitCode, ErrExit)
	default:
		return nil, fmt.Errorf("could not execute %s: %w", p.program, err)
	}
}
