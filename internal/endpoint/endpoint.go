// Package endpoint implements the bidirectional pump at the heart of
// pnc: one connected socket on one side, a local byte source and sink
// on the other, moved by a single cooperative loop.
//
// The loop never blocks indefinitely on either stream.  Each tick
// performs one bounded socket read (via a short read deadline, or a
// goroutine-fed buffer for conns without deadline support), one
// non-blocking local read, and the conditional writes, then loops —
// so an external interrupt is observed within a few milliseconds.
package endpoint

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	ncerr "pnc/internal/errors"
	"pnc/util"
)

// pollInterval bounds a single socket read so the loop stays
// responsive to cancellation and to the local stream.
const pollInterval = 2 * time.Millisecond

// pumpState tracks the EOF/half-close progression of one session.
type pumpState int

const (
	// stateBothOpen: socket and local input are both live.
	stateBothOpen pumpState = iota
	// stateLocalEOF: local input is exhausted; only socket → local
	// traffic continues, optionally until the quit delay elapses.
	stateLocalEOF
)

// Endpoint owns exactly one live connection plus references to the
// local stream pair.  It is created right after a successful
// connect/accept and never reused: Run closes the socket on every
// exit path.
type Endpoint struct {
	Conn net.Conn
	In   Source    // local input; nil means "immediately at EOF"
	Out  io.Writer // local output

	// HalfClose shuts down the socket's write half once when the
	// local input reaches EOF (-N).
	HalfClose bool

	// QuitDelay ends the session this long after local-input EOF.
	// Negative means never time out: run until the connection closes.
	QuitDelay time.Duration

	Logger *util.Logger
	Stats  *Stats
}

// New returns an Endpoint with the quit timer disabled.
func New(conn net.Conn, in Source, out io.Writer, logger *util.Logger) *Endpoint {
	return &Endpoint{
		Conn:      conn,
		In:        in,
		Out:       out,
		QuitDelay: -1,
		Logger:    logger,
		Stats:     NewStats(),
	}
}

// RemoteAddr reports the peer of the owned connection.
func (e *Endpoint) RemoteAddr() net.Addr { return e.Conn.RemoteAddr() }

// Close releases the owned socket.  Safe to call after Run.
func (e *Endpoint) Close() error { return e.Conn.Close() }

// closeWriter is satisfied by *net.TCPConn and anything else that can
// shut down just the write direction.
type closeWriter interface {
	CloseWrite() error
}

// flusher lets buffered local outputs drain after every receive so
// interactive peers (e.g. a piped shell) see data promptly.
type flusher interface {
	Flush() error
}

// Run pumps bytes between the socket and the local stream pair until
// the peer closes, a stop signal arrives, the quit delay elapses, or
// ctx is cancelled.  All of those are normal exits; only unexpected
// socket failures return an error.  The socket is closed on return.
func (e *Endpoint) Run(ctx context.Context) error {
	defer e.Conn.Close()

	bufp := util.GetBuf()
	defer util.PutBuf(bufp)
	netBuf := *bufp

	localBuf := make([]byte, util.PumpBufSize)

	// Not every conn supports read deadlines: an SSH channel's setter
	// errors, and a bare Read on it would block past every tick.
	// Probe once and route such conns through the same goroutine-fed
	// contract the local input uses.
	var pumped Source
	if err := e.Conn.SetReadDeadline(time.Now().Add(pollInterval)); err != nil {
		e.Logger.Debug("no read-deadline support (%v); buffering socket reads", err)
		pumped = NewStreamSource(e.Conn)
	}

	state := stateBothOpen
	var eofAt time.Time

	for {
		select {
		case <-ctx.Done():
			e.Logger.Debug("pump interrupted")
			return nil
		default:
		}

		// 1. Socket → local output.  Always attempted first so
		// interleaved fixtures are deterministic.
		var n int
		var err error
		if pumped != nil {
			n, err = pumped.ReadAvailable(netBuf)
			if n == 0 && err == nil {
				// Nothing ready; pace the tick the way the
				// deadline-bounded read would.
				time.Sleep(pollInterval)
			}
		} else {
			e.Conn.SetReadDeadline(time.Now().Add(pollInterval)) //nolint:errcheck
			n, err = e.Conn.Read(netBuf)
		}
		if n > 0 {
			e.Stats.AddReceived(int64(n))
			if werr := e.writeLocal(netBuf[:n]); werr != nil {
				// The local sink is gone (bridged process exited
				// mid-write).  Normal exit, not a failure.
				e.Logger.Debug("local output closed: %v", werr)
				return nil
			}
		}
		if err != nil && !ncerr.IsTimeout(err) {
			if ncerr.IsClosed(err) || ncerr.IsRefused(err) {
				// EOF, reset, or the ICMP refusal a connected UDP
				// socket reports — the connection is over.
				e.Logger.Debug("connection closed: %v", err)
				return nil
			}
			return ncerr.Wrap("read", e.Conn.RemoteAddr().String(), err)
		}

		// 2. Local input → socket, or the post-EOF quit timer.
		switch state {
		case stateBothOpen:
			m, rerr := e.readLocal(localBuf)
			if m > 0 {
				e.Stats.AddSent(int64(m))
				if _, werr := e.Conn.Write(localBuf[:m]); werr != nil {
					if ncerr.IsClosed(werr) {
						e.Logger.Debug("connection closed on write: %v", werr)
						return nil
					}
					return ncerr.Wrap("write", e.Conn.RemoteAddr().String(), werr)
				}
			}
			switch {
			case rerr == nil:
			case ncerr.Is(rerr, io.EOF):
				e.Logger.Debug("EOF on local input")
				eofAt = time.Now()
				state = stateLocalEOF
				if e.HalfClose {
					e.shutdownWrite()
				}
			case ncerr.Is(rerr, ncerr.ErrStop):
				e.Logger.Debug("stop signal from local stream")
				return nil
			default:
				return fmt.Errorf("local input: %w", rerr)
			}

		case stateLocalEOF:
			if e.QuitDelay >= 0 && time.Since(eofAt) >= e.QuitDelay {
				e.Logger.Debug("quit delay elapsed after local EOF")
				return nil
			}
		}
	}
}

// readLocal performs the non-blocking local read.  A nil Source is an
// already-exhausted input (zero-length stdin).
func (e *Endpoint) readLocal(p []byte) (int, error) {
	if e.In == nil {
		return 0, io.EOF
	}
	return e.In.ReadAvailable(p)
}

// writeLocal writes received data to the local output and flushes it
// immediately to keep interactive sessions responsive.
func (e *Endpoint) writeLocal(p []byte) error {
	if _, err := e.Out.Write(p); err != nil {
		return err
	}
	if f, ok := e.Out.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// shutdownWrite half-closes the socket.  Best effort: the peer may
// already have closed, and datagram sockets have no write half.
func (e *Endpoint) shutdownWrite() {
	cw, ok := e.Conn.(closeWriter)
	if !ok {
		e.Logger.Debug("connection does not support half-close")
		return
	}
	e.Logger.Debug("shutting down socket writes")
	cw.CloseWrite() //nolint:errcheck
}
