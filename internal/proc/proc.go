// Package proc bridges a spawned subprocess into the pump's local
// stream contract: the child's stdout becomes a non-blocking Source,
// its stdin becomes the local output sink, and process exit raises the
// same stop signal the pump uses for every other termination.
package proc

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"pnc/internal/endpoint"
	ncerr "pnc/internal/errors"
	"pnc/util"
)

// Bridge wraps a running child process.  Output() and Input() plug
// straight into an Endpoint in place of the console streams.
type Bridge struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	outR   *os.File // read side of the child's stdout+stderr pipe
	source endpoint.Source
	logger *util.Logger

	mu     sync.Mutex
	waited bool
	err    error
}

// Start spawns program (direct exec) or command (via the system
// shell); exactly one must be non-empty.  The child's stdout and
// stderr share one pipe so both travel over the connection.
func Start(ctx context.Context, program, command string, logger *util.Logger) (*Bridge, error) {
	var cmd *exec.Cmd
	switch {
	case command != "":
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "cmd.exe", "/C", command)
		} else {
			cmd = exec.CommandContext(ctx, "/bin/sh", "-c", command)
		}
	case program != "":
		cmd = exec.CommandContext(ctx, program)
	default:
		return nil, fmt.Errorf("no command specified for exec mode")
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	outR, outW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = outW

	logger.Debug("exec: %s", cmd.String())

	if err := cmd.Start(); err != nil {
		stdin.Close()
		outR.Close()
		outW.Close()
		return nil, fmt.Errorf("exec %q: %w", cmd.Path, err)
	}
	// The child holds its own copy of the write end.
	outW.Close()

	b := &Bridge{
		cmd:    cmd,
		stdin:  stdin,
		outR:   outR,
		logger: logger,
	}
	b.source = &stopOnExit{inner: endpoint.NewStreamSource(outR)}
	return b, nil
}

// Output is the child's combined stdout+stderr as a pump Source.  It
// reports ErrStop once the child has exited and the pipe is drained.
func (b *Bridge) Output() endpoint.Source { return b.source }

// Input is the child's stdin; the pump writes received socket data
// here.  Writes fail once the child exits, which the pump treats as a
// stop.
func (b *Bridge) Input() io.Writer { return b.stdin }

// Wait reaps the child.  Idempotent.
func (b *Bridge) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.waited {
		b.waited = true
		if err := b.cmd.Wait(); err != nil {
			b.err = fmt.Errorf("%w: %v", ncerr.ErrProcessTerminated, err)
			b.logger.Debug("process exited: %v", err)
		} else {
			b.logger.Debug("process exited")
		}
	}
	return b.err
}

// Close tears the bridge down: stdin and the output pipe are closed,
// a still-running child is killed, and the exit status reaped.
func (b *Bridge) Close() error {
	b.stdin.Close() //nolint:errcheck
	b.outR.Close()  //nolint:errcheck

	b.mu.Lock()
	waited := b.waited
	b.mu.Unlock()
	if !waited && b.cmd.Process != nil {
		b.cmd.Process.Kill() //nolint:errcheck
	}
	return b.Wait()
}

// stopOnExit translates the pipe's exhaustion into the pump's stop
// signal: once the child dies and its output drains, the session is
// over, not merely at EOF.
type stopOnExit struct {
	inner endpoint.Source
}

func (s *stopOnExit) ReadAvailable(p []byte) (int, error) {
	n, err := s.inner.ReadAvailable(p)
	if err == io.EOF {
		err = ncerr.ErrStop
	}
	return n, err
}
