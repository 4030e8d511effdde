package command

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Success(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}

	res, err := ExecRunner{}.Run(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, "echo hello", res.String())
}

func TestExecRunner_ExitCode(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	res, err := ExecRunner{}.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken", res.StderrTail(100))
}

func TestExecRunner_ContextCancel(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := ExecRunner{}.Run(ctx, "sleep", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestStderrTail(t *testing.T) {
	r := Result{Stderr: "0123456789"}
	assert.Equal(t, "...6789", r.StderrTail(4))
	assert.Equal(t, "0123456789", r.StderrTail(20))
}
