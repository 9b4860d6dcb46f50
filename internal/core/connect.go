package core

import (
	"context"
	"io"
	"os"

	"pnc/internal/endpoint"
	ncerr "pnc/internal/errors"
	"pnc/internal/transport"
	"pnc/util"
)

// ConnectMode dials an ordered sequence of ports on one destination,
// skipping ports that refuse, and runs one session per successful
// attempt — the client mode.  With ZeroIO set, each connection is
// closed immediately after it is established (port scanning).
type ConnectMode struct {
	Dialer  transport.Dialer
	Host    string
	Ports   []int  // ascending, consumed once, no retries
	Network string // "tcp" or "udp"
	NoDNS   bool   // numeric destinations only
	ZeroIO  bool
	Options SessionOptions
	Logger  *util.Logger

	// Stdin/Stdout default to the process streams when nil.
	// Override in tests for deterministic I/O.
	Stdin  endpoint.Source
	Stdout io.Writer
}

func (m *ConnectMode) stdin() endpoint.Source {
	if m.Stdin == nil && !m.Options.exec() && !m.ZeroIO {
		m.Stdin = endpoint.NewConsoleSource(os.Stdin, m.Logger)
	}
	return m.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run attempts each port in order.  A refused port is logged and
// skipped — the normal outcome mid-scan; any other socket error is
// fatal.  When every attempt was refused, the last refusal (with its
// destination and port) is the result.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	var lastRefused *ncerr.RefusedError
	succeeded := 0

	for _, port := range m.Ports {
		if ctx.Err() != nil {
			return nil
		}

		addr, err := util.ResolveAddr(m.Host, port, m.NoDNS)
		if err != nil {
			return err
		}
		conn, err := m.Dialer.Dial(ctx, m.Network, addr)
		if err != nil {
			if ncerr.IsRefused(err) {
				m.Logger.Verbose("connect to %s port %d (%s) failed: Connection refused",
					m.Host, port, m.Network)
				lastRefused = ncerr.Refused(m.Host, port, err)
				continue
			}
			return ncerr.Wrap("dial", addr, err)
		}

		succeeded++
		m.Logger.Verbose("Connection to %s %d port [%s/*] succeeded!",
			m.Host, port, m.Network)

		if m.ZeroIO {
			// Reachability was the whole point; no data is exchanged.
			conn.Close()
			continue
		}

		if err := runSession(ctx, conn, m.stdin(), m.stdout(), m.Options, m.Logger); err != nil {
			return err
		}
	}

	if succeeded == 0 && lastRefused != nil {
		return lastRefused
	}
	return nil
}
