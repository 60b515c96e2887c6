package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Invoker runs one toolchain build from crate source to the web artifact.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (Outcome, error)
}

// CommandInvoker spawns the native toolchain as a child process with a fixed
// argument set. The child's stderr is connected straight to Stderr so
// compiler diagnostics reach the operator without buffering; its stdout
// carries nothing we interpret and is discarded, and no stdin is supplied.
type CommandInvoker struct {
	Command string
	Args    []string
	Dir     string
	Stderr  io.Writer
}

func NewCommandInvoker(command string, args []string, dir string) *CommandInvoker {
	return &CommandInvoker{
		Command: command,
		Args:    args,
		Dir:     dir,
		Stderr:  os.Stderr,
	}
}

// Invoke resolves exactly once per request: exit 0 yields a successful
// Outcome, a non-zero exit yields an Outcome carrying that status with a nil
// error, and a process that could not be launched at all yields a non-nil
// spawn error.
func (inv *CommandInvoker) Invoke(ctx context.Context, req Request) (Outcome, error) {
	if inv.Command == "" {
		return Outcome{}, fmt.Errorf("toolchain command required")
	}

	start := time.Now()

	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdout = io.Discard
	cmd.Stderr = inv.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	finished := time.Now()

	outcome := Outcome{
		Trigger:    req.Trigger,
		Path:       req.Path,
		StartedAt:  start,
		FinishedAt: finished,
		DurationMs: finished.Sub(start).Milliseconds(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		outcome.ExitCode = -1
		return outcome, fmt.Errorf("spawn %s: %w", inv.Command, err)
	}

	return outcome, nil
}
