package proc

import (
	"context"
	"io"
	"runtime"
	"strings"
	"testing"
	"time"

	"pnc/internal/endpoint"
	ncerr "pnc/internal/errors"
	"pnc/util"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}
}

// drainSource polls a source until it reports a terminal error.
func drainSource(t *testing.T, s endpoint.Source, timeout time.Duration) (string, error) {
	t.Helper()

	var out strings.Builder
	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		n, err := s.ReadAvailable(buf)
		out.Write(buf[:n])
		if err != nil {
			return out.String(), err
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatalf("source did not terminate within %v (got %q)", timeout, out.String())
	return "", nil
}

// TestBridge_CommandOutput verifies a shell command's output arrives
// through the source and that exit raises the stop signal, not EOF.
func TestBridge_CommandOutput(t *testing.T) {
	skipOnWindows(t)

	b, err := Start(context.Background(), "", "echo hello", util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	got, terr := drainSource(t, b.Output(), 5*time.Second)
	if terr != ncerr.ErrStop {
		t.Errorf("terminal error = %v, want ErrStop", terr)
	}
	if got != "hello\n" {
		t.Errorf("output = %q, want %q", got, "hello\n")
	}
}

// TestBridge_Input verifies data written to Input reaches the child's
// stdin and comes back out of a cat process.
func TestBridge_Input(t *testing.T) {
	skipOnWindows(t)

	b, err := Start(context.Background(), "cat", "", util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := io.WriteString(b.Input(), "ping"); err != nil {
		t.Fatal(err)
	}

	var got strings.Builder
	buf := make([]byte, 64)
	deadline := time.Now().Add(5 * time.Second)
	for got.Len() < 4 && time.Now().Before(deadline) {
		n, err := b.Output().ReadAvailable(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
		if n == 0 {
			time.Sleep(time.Millisecond)
		}
	}
	if got.String() != "ping" {
		t.Errorf("echoed %q, want %q", got.String(), "ping")
	}
}

// TestBridge_StderrShared verifies the child's stderr travels over the
// same source as stdout.
func TestBridge_StderrShared(t *testing.T) {
	skipOnWindows(t)

	b, err := Start(context.Background(), "", "echo oops 1>&2", util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	got, _ := drainSource(t, b.Output(), 5*time.Second)
	if got != "oops\n" {
		t.Errorf("output = %q, want %q", got, "oops\n")
	}
}

// TestStart_MissingProgram verifies a nonexistent program fails at
// start, before any session begins.
func TestStart_MissingProgram(t *testing.T) {
	_, err := Start(context.Background(), "/no/such/binary", "", util.NewLogger(0))
	if err == nil {
		t.Fatal("expected start error")
	}
}

// TestStart_NothingToRun verifies the empty configuration is rejected.
func TestStart_NothingToRun(t *testing.T) {
	_, err := Start(context.Background(), "", "", util.NewLogger(0))
	if err == nil {
		t.Fatal("expected error when neither program nor command is set")
	}
}

// TestBridge_CloseKillsChild verifies Close reaps a child that would
// otherwise run forever.
func TestBridge_CloseKillsChild(t *testing.T) {
	skipOnWindows(t)

	b, err := Start(context.Background(), "cat", "", util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		b.Close() //nolint:errcheck // killed children report an exit error
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not reap the child")
	}
}
