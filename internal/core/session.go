package core

import (
	"context"
	"io"
	"net"
	"time"

	"pnc/internal/endpoint"
	"pnc/internal/proc"
	"pnc/util"
)

// SessionOptions carries the per-connection behaviour shared by the
// connect and listen modes.
type SessionOptions struct {
	HalfClose bool          // -N
	QuitDelay time.Duration // -q (negative disables)
	Program   string        // -e
	Command   string        // -c
}

// exec reports whether sessions pump to a child process instead of
// the local console streams.
func (o SessionOptions) exec() bool {
	return o.Program != "" || o.Command != ""
}

// runSession pumps one connection to completion.  With an execute
// command configured, the endpoint's local stream pair is redirected
// to a freshly spawned child; otherwise it uses the supplied console
// source and output writer.  The connection is closed on return.
func runSession(ctx context.Context, conn net.Conn, in endpoint.Source, out io.Writer,
	opt SessionOptions, logger *util.Logger) error {

	if opt.exec() {
		bridge, err := proc.Start(ctx, opt.Program, opt.Command, logger)
		if err != nil {
			conn.Close()
			return err
		}
		defer bridge.Close()
		in, out = bridge.Output(), bridge.Input()
	}

	ep := endpoint.New(conn, in, out, logger)
	ep.HalfClose = opt.HalfClose
	ep.QuitDelay = opt.QuitDelay

	err := ep.Run(ctx)
	logger.Verbose("session to %s finished: %s", conn.RemoteAddr(), ep.Stats)
	return err
}
