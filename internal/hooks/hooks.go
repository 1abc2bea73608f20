// Package hooks invokes the external post-save hook.
package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Options configures a hook invocation.
type Options struct {
	// Command is the hook executable, optionally followed by fixed
	// arguments separated by spaces.
	Command string
	// TasksFile is the task file that was just saved.
	TasksFile string
	// Action names the change that triggered the save, e.g. "add".
	Action string
	// Count is the number of tasks in the saved file.
	Count   int
	WorkDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command with the arguments
//
//	<tasks file> <action> <count>
//
// and TASKPAD_TASKS_FILE / TASKPAD_ACTION set in its environment. An empty
// command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	fields := strings.Fields(opts.Command)
	if len(fields) == 0 {
		return Result{}, nil
	}
	if opts.TasksFile == "" {
		return Result{}, errors.New("hook: tasks file is empty")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	action := opts.Action
	if action == "" {
		action = "save"
	}
	args := append(fields[1:], opts.TasksFile, action, strconv.Itoa(opts.Count))

	cmd := exec.CommandContext(ctx, fields[0], args...)
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"TASKPAD_TASKS_FILE="+opts.TasksFile,
		"TASKPAD_ACTION="+action,
	)
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
