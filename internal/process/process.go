// internal/process/process.go

// Package process runs the external commands the control plane depends
// on (insmod, rmmod, chmod, lsmod) behind a small interface, so the
// lifecycle manager can be tested against a recording double.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports a zero exit status.
func (r Result) OK() bool { return r.ExitCode == 0 }

// Err returns a *ProcessError for a non-zero exit, nil otherwise.
func (r Result) Err(argv []string) error {
	if r.OK() {
		return nil
	}
	return &ProcessError{
		Argv:     argv,
		ExitCode: r.ExitCode,
		Stderr:   strings.TrimSpace(r.Stderr),
	}
}

// Runner executes one command. A non-zero exit is reported through
// Result, not the error; the error is reserved for commands that could
// not run or were killed (timeout, cancellation).
type Runner interface {
	Execute(ctx context.Context, argv []string) (Result, error)
}

// ProcessError describes a command that exited non-zero.
type ProcessError struct {
	Argv     []string
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	msg := e.Stderr
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Argv, " "), msg)
}

// waitDelay bounds how long Run waits for output pipes after the
// process is killed.
const waitDelay = time.Second

// Exec runs commands with os/exec.
type Exec struct {
	// Timeout bounds each call. Zero means no per-call bound beyond ctx.
	Timeout time.Duration

	// Sudo prefixes privileged commands with "sudo -n".
	Sudo bool

	// Privileged lists the command names that get the sudo prefix.
	// Empty means every command.
	Privileged []string
}

// Execute runs argv and captures stdout and stderr separately.
func (e *Exec) Execute(ctx context.Context, argv []string) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New("process: empty command")
	}

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	full := argv
	if e.Sudo && e.privileged(argv[0]) {
		full = append([]string{"sudo", "-n"}, argv...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, full[0], full[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() != nil {
		res.ExitCode = -1
		return res, fmt.Errorf("process: %s: %w", strings.Join(argv, " "), ctx.Err())
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("process: %s: %w", strings.Join(argv, " "), err)
	}
}

func (e *Exec) privileged(name string) bool {
	if len(e.Privileged) == 0 {
		return true
	}
	for _, p := range e.Privileged {
		if p == name {
			return true
		}
	}
	return false
}

// CheckSudo reports whether non-interactive sudo is available.
func CheckSudo(ctx context.Context, timeout time.Duration) bool {
	r := &Exec{Timeout: timeout}
	res, err := r.Execute(ctx, []string{"sudo", "-n", "true"})
	return err == nil && res.OK()
}
