// internal/process/process_test.go

package process

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecuteCapturesStreams(t *testing.T) {
	requireShell(t)

	r := &Exec{}
	res, err := r.Execute(context.Background(), []string{"sh", "-c", "echo out; echo err 1>&2"})
	if err != nil {
		t.Fatalf("Execute err=%v", err)
	}
	if !res.OK() {
		t.Fatalf("exit=%d", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "out" {
		t.Fatalf("stdout=%q", res.Stdout)
	}
	if strings.TrimSpace(res.Stderr) != "err" {
		t.Fatalf("stderr=%q", res.Stderr)
	}
}

func TestExecuteNonZeroIsNotAnError(t *testing.T) {
	requireShell(t)

	r := &Exec{}
	argv := []string{"sh", "-c", "echo 'no such module' 1>&2; exit 3"}
	res, err := r.Execute(context.Background(), argv)
	if err != nil {
		t.Fatalf("Execute err=%v", err)
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit=%d want 3", res.ExitCode)
	}

	perr := res.Err(argv)
	var pe *ProcessError
	if !errors.As(perr, &pe) {
		t.Fatalf("expected *ProcessError, got %T", perr)
	}
	if pe.Stderr != "no such module" {
		t.Fatalf("stderr=%q", pe.Stderr)
	}
}

func TestExecuteTimeout(t *testing.T) {
	requireShell(t)

	r := &Exec{Timeout: 50 * time.Millisecond}
	start := time.Now()
	_, err := r.Execute(context.Background(), []string{"sh", "-c", "exec sleep 5"})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	r := &Exec{}
	if _, err := r.Execute(context.Background(), []string{"definitely-not-a-binary-xyz"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestExecuteEmpty(t *testing.T) {
	r := &Exec{}
	if _, err := r.Execute(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPrivilegedSelection(t *testing.T) {
	r := &Exec{Sudo: true, Privileged: []string{"insmod", "rmmod", "chmod"}}
	if !r.privileged("insmod") {
		t.Fatalf("insmod should be privileged")
	}
	if r.privileged("lsmod") {
		t.Fatalf("lsmod should not be privileged")
	}

	all := &Exec{Sudo: true}
	if !all.privileged("lsmod") {
		t.Fatalf("empty list means every command")
	}
}

func TestResultErrNilOnSuccess(t *testing.T) {
	if err := (Result{}).Err([]string{"true"}); err != nil {
		t.Fatalf("err=%v", err)
	}
}

func TestProcessErrorFallsBackToExitStatus(t *testing.T) {
	err := (Result{ExitCode: 2}).Err([]string{"rmmod", "x"})
	if err.Error() != "rmmod x: exit status 2" {
		t.Fatalf("got %q", err.Error())
	}
}
