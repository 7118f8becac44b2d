package gitexec

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun_Success(t *testing.T) {
	r := New("git")
	res, err := r.RunSimple(context.Background(), 10*time.Second, "version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Run() Success = false, output: %s", res.Output)
	}
	if res.Output == "" {
		t.Error("Run() returned empty output for git version")
	}
}

func TestRun_NonzeroExit(t *testing.T) {
	r := New("git")
	res, err := r.RunSimple(context.Background(), 10*time.Second, "definitely-not-a-subcommand")
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for nonzero exit", err)
	}
	if res.Success {
		t.Error("Run() Success = true for an unknown subcommand")
	}
	if res.Output == "" {
		t.Error("Run() dropped the tool's diagnostic output")
	}
}

func TestRun_ToolUnavailable(t *testing.T) {
	r := New("chisel-no-such-binary-for-testing")
	_, err := r.RunSimple(context.Background(), 10*time.Second, "anything")
	if !errors.Is(err, ErrToolUnavailable) {
		t.Errorf("Run() error = %v, want ErrToolUnavailable", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	r := New("sleep")
	start := time.Now()
	_, err := r.Run(context.Background(), Command{
		Args:    []string{"30"},
		Timeout: 200 * time.Millisecond,
	})
	elapsed := time.Since(start)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Run() error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Allotted != 200*time.Millisecond {
		t.Errorf("Allotted = %v, want 200ms", timeoutErr.Allotted)
	}
	// Must return promptly after the deadline, not wait for the child.
	if elapsed > 10*time.Second {
		t.Errorf("Run() took %v after a 200ms timeout", elapsed)
	}
}

func TestRun_CallerDeadlineIsNotACommandTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	r := New("sleep")
	_, err := r.Run(ctx, Command{
		Args:    []string{"30"},
		Timeout: 10 * time.Second,
	})

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		t.Fatalf("Run() error = %v, blames the 10s command budget for the caller's 100ms deadline", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRun_Stdin(t *testing.T) {
	r := New("cat")
	res, err := r.Run(context.Background(), Command{
		Args:    nil,
		Timeout: 10 * time.Second,
		Stdin:   "piped message body",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != "piped message body" {
		t.Errorf("Run() Output = %q, want stdin echoed", res.Output)
	}
}

func TestRun_ExtraEnv(t *testing.T) {
	r := New("sh")
	res, err := r.Run(context.Background(), Command{
		Args:    []string{"-c", "printf %s \"$CHISEL_TEST_VALUE\""},
		Timeout: 10 * time.Second,
		Env:     []string{"CHISEL_TEST_VALUE=from-env"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Output != "from-env" {
		t.Errorf("Run() Output = %q, want %q", res.Output, "from-env")
	}
}

func TestRun_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New("git")
	res, err := r.RunSimple(ctx, 10*time.Second, "version")
	if err == nil && res.Success {
		t.Error("Run() succeeded with a cancelled context")
	}
}
