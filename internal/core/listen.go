package core

import (
	"context"
	"io"
	"net"
	"os"
	"time"

	"pnc/internal/endpoint"
	ncerr "pnc/internal/errors"
	"pnc/util"
)

// acceptPollInterval bounds one wait for an inbound connection so the
// accept loop observes cancellation promptly.
const acceptPollInterval = 5 * time.Millisecond

// ListenMode accepts inbound connections and runs one session per
// client — the server mode.  Without KeepOpen the listening socket is
// closed right after the first accept, so later probes of the port
// fail cleanly instead of hanging; with KeepOpen clients are served
// strictly one after another, never concurrently.
type ListenMode struct {
	Address  string // "host:port"; empty host binds all interfaces
	Network  string // "tcp" or "udp"
	KeepOpen bool
	Options  SessionOptions
	Logger   *util.Logger

	// Stdin/Stdout default to the process streams when nil.
	Stdin  endpoint.Source
	Stdout io.Writer
}

func (m *ListenMode) stdin() endpoint.Source {
	if m.Stdin == nil && !m.Options.exec() {
		m.Stdin = endpoint.NewConsoleSource(os.Stdin, m.Logger)
	}
	return m.Stdin
}

func (m *ListenMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run binds and serves until the listener is exhausted (single-shot
// mode after one client, or external closure) or ctx is cancelled.
func (m *ListenMode) Run(ctx context.Context) error {
	if m.Network == "udp" {
		return m.runUDP(ctx)
	}
	return m.runTCP(ctx)
}

// ── TCP ──────────────────────────────────────────────────────────────

func (m *ListenMode) runTCP(ctx context.Context) error {
	// Resolve up front so a bad bind address fails with a clear error
	// before any socket exists.
	laddr, err := net.ResolveTCPAddr("tcp", m.Address)
	if err != nil {
		return ncerr.Wrap("listen", m.Address, err)
	}

	ln, err := net.ListenTCP("tcp", laddr)
	if err != nil {
		return ncerr.Wrap("listen", m.Address, err)
	}
	defer ln.Close()

	m.Logger.Verbose("listening on %s (tcp)", ln.Addr())

	for {
		conn, err := m.acceptPoll(ctx, ln)
		if err != nil {
			if ncerr.Is(err, ncerr.ErrExhausted) {
				return nil
			}
			return err
		}

		if !m.KeepOpen {
			// Single-shot: the port stops accepting the moment the
			// first client is in.
			ln.Close()
		}

		m.Logger.Verbose("connection from %s [tcp] accepted", conn.RemoteAddr())

		err = runSession(ctx, conn, m.stdin(), m.stdout(), m.Options, m.Logger)
		if !m.KeepOpen {
			return err
		}
		if err != nil {
			m.Logger.Error("session: %v", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// acceptPoll waits for one inbound connection using short accept
// deadlines.  External closure of the listener and context
// cancellation both surface as ErrExhausted — graceful shutdown, not
// failure.
func (m *ListenMode) acceptPoll(ctx context.Context, ln *net.TCPListener) (net.Conn, error) {
	for {
		if ctx.Err() != nil {
			return nil, ncerr.ErrExhausted
		}

		ln.SetDeadline(time.Now().Add(acceptPollInterval)) //nolint:errcheck
		conn, err := ln.Accept()
		if err != nil {
			if ncerr.IsTimeout(err) {
				continue
			}
			if ncerr.Is(err, net.ErrClosed) {
				return nil, ncerr.ErrExhausted
			}
			return nil, ncerr.Wrap("accept", ln.Addr().String(), err)
		}
		return conn, nil
	}
}

// ── UDP ──────────────────────────────────────────────────────────────

// runUDP binds a datagram socket and simulates accepts: it waits for
// the first datagram, locks the socket onto that sender, and pumps
// until the session ends.  Keep-open is best-effort — the one socket
// cannot serve new peers while a session is active, so it merely
// re-arms for the next sender afterwards.
func (m *ListenMode) runUDP(ctx context.Context) error {
	laddr, err := net.ResolveUDPAddr("udp", m.Address)
	if err != nil {
		return ncerr.Wrap("listen", m.Address, err)
	}

	uc, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return ncerr.Wrap("listen", m.Address, err)
	}
	defer uc.Close()

	m.Logger.Verbose("listening on %s (udp)", uc.LocalAddr())

	for {
		payload, peer, err := m.awaitDatagram(ctx, uc)
		if err != nil {
			if ncerr.Is(err, ncerr.ErrExhausted) {
				return nil
			}
			return err
		}

		m.Logger.Verbose("connection from %s [udp] accepted", peer)

		// The datagram that established the "connection" is data too.
		if len(payload) > 0 {
			m.stdout().Write(payload) //nolint:errcheck
		}

		conn := &udpPeerConn{UDPConn: uc, peer: peer, ownsSocket: !m.KeepOpen}

		err = runSession(ctx, conn, m.stdin(), m.stdout(), m.Options, m.Logger)
		if !m.KeepOpen {
			return err
		}
		if err != nil {
			m.Logger.Error("session: %v", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// awaitDatagram polls until the first datagram arrives and returns its
// payload and sender.
func (m *ListenMode) awaitDatagram(ctx context.Context, uc *net.UDPConn) ([]byte, *net.UDPAddr, error) {
	buf := make([]byte, util.PumpBufSize)
	for {
		if ctx.Err() != nil {
			return nil, nil, ncerr.ErrExhausted
		}

		uc.SetReadDeadline(time.Now().Add(acceptPollInterval)) //nolint:errcheck
		n, addr, err := uc.ReadFromUDP(buf)
		if err != nil {
			if ncerr.IsTimeout(err) {
				continue
			}
			if ncerr.Is(err, net.ErrClosed) {
				return nil, nil, ncerr.ErrExhausted
			}
			return nil, nil, ncerr.Wrap("read", uc.LocalAddr().String(), err)
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		return payload, addr, nil
	}
}

// udpPeerConn locks a bound datagram socket onto one peer, standing in
// for connect(): reads drop datagrams from anyone else, writes target
// the captured address.  With ownsSocket false (keep-open), closing
// the session leaves the underlying socket bound for the next peer.
type udpPeerConn struct {
	*net.UDPConn
	peer       *net.UDPAddr
	ownsSocket bool
}

func (c *udpPeerConn) Read(p []byte) (int, error) {
	for {
		n, addr, err := c.UDPConn.ReadFromUDP(p)
		if err != nil {
			return 0, err
		}
		if addr.IP.Equal(c.peer.IP) && addr.Port == c.peer.Port {
			return n, nil
		}
		// A different peer while this session is active; drop it.
	}
}

func (c *udpPeerConn) Write(p []byte) (int, error) {
	return c.UDPConn.WriteToUDP(p, c.peer)
}

func (c *udpPeerConn) RemoteAddr() net.Addr { return c.peer }

func (c *udpPeerConn) Close() error {
	if c.ownsSocket {
		return c.UDPConn.Close()
	}
	return nil
}
