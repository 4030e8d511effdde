package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result captures one external command invocation.
type Result struct {
	Command  string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// String renders the command line for logs.
func (r Result) String() string {
	return strings.TrimSpace(r.Command + " " + strings.Join(r.Args, " "))
}

// StderrTail returns at most the last n bytes of stderr, for error messages.
func (r Result) StderrTail(n int) string {
	s := strings.TrimSpace(r.Stderr)
	if len(s) > n {
		s = "..." + s[len(s)-n:]
	}
	return s
}

// Runner abstracts process execution for testability.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner executes commands via os/exec.
type ExecRunner struct{}

// Run executes one command and captures stdout/stderr and exit code.
// The process is killed when ctx is done.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Command: name,
		Args:    args,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil {
		result.ExitCode = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", name, ctxErr)
		}
		return result, fmt.Errorf("%s exited with code %d: %w", name, result.ExitCode, err)
	}

	return result, nil
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) (Result, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return f(ctx, name, args...)
}
