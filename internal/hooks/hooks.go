// Package hooks invokes the external command configured to run after each
// task change.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Options configures a hook invocation.
type Options struct {
	Command   string
	Event     string // add, toggle, or delete
	TaskID    int
	TasksFile string
	WorkDir   string

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook as `<command> <event> <task-id> <tasks-file>`. An
// empty command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if opts.Event == "" {
		return Result{}, errors.New("hook event is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	args := []string{opts.Event, strconv.Itoa(opts.TaskID), opts.TasksFile}
	cmd := exec.CommandContext(ctx, opts.Command, args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err := cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
