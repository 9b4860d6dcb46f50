// Package errors provides domain-specific error types for pnc.
//
// These types carry structured context (operation, address, the exact
// refused destination) that lets callers distinguish "skip this port
// and keep scanning" from "abort the run", and gives the pump loop an
// ordinary, testable stop signal instead of an exceptional path.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrStop is the internal control signal that unwinds the pump
	// loop cleanly.  It is always absorbed at the loop boundary and
	// never surfaces to the user as a failure.
	ErrStop = errors.New("stop requested")

	// ErrProcessTerminated wraps the abnormal exit status of a
	// bridged subprocess.  The pump itself only ever sees ErrStop.
	ErrProcessTerminated = errors.New("process terminated")

	// ErrExhausted signals that a connection iterator has no more
	// connections to produce (e.g. the listening socket was closed
	// from outside the accept loop).  Graceful shutdown, not failure.
	ErrExhausted = errors.New("no more connections")

	// ErrInvalidPort marks a malformed or out-of-range port token.
	// Raised during parsing, before any socket is opened.
	ErrInvalidPort = errors.New("invalid port")

	ErrNotConnected = errors.New("not connected")
	ErrAuthFailed   = errors.New("authentication failed")
)

// ── Structured error types ───────────────────────────────────────────

// RefusedError records a (destination, port) pair that actively refused
// a connection.  Within a multi-port scan it is recoverable; when it is
// the only target it becomes the run's result.
type RefusedError struct {
	Host string
	Port int
	Err  error
}

func (e *RefusedError) Error() string {
	return fmt.Sprintf("connect to %s port %d failed: connection refused", e.Host, e.Port)
}

func (e *RefusedError) Unwrap() error { return e.Err }

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op   string // operation: "dial", "listen", "accept", "write", "read"
	Addr string // network address involved
	Err  error  // underlying error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents an SSH-specific failure with gateway context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "channel"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// Refused creates a RefusedError for the given destination.
func Refused(host string, port int, err error) *RefusedError {
	return &RefusedError{Host: host, Port: port, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification helpers ───────────────────────────────────────────

// IsRefused reports whether err stems from an active connection
// refusal (TCP RST on connect, or the ICMP port-unreachable a
// connected UDP socket reports on read).
func IsRefused(err error) bool {
	if err == nil {
		return false
	}
	var re *RefusedError
	if errors.As(err, &re) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

// IsClosed reports whether err means the connection is simply gone:
// EOF, a socket closed out from under the loop, or a reset peer.
// These unwind the pump as a normal exit.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// IsTimeout reports whether err is a deadline expiry from a bounded
// poll, i.e. "no data this tick".
func IsTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use pnc/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }
