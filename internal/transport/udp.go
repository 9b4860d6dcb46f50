package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// UDPDialer associates a datagram socket with a peer address.  No
// handshake happens: the "connection" cannot fail on refusal until
// data is exchanged, at which point an ICMP port-unreachable surfaces
// as ECONNREFUSED on a later read.
type UDPDialer struct {
	Timeout   time.Duration
	LocalPort int // optional source-port binding (0 = ephemeral)
}

// Dial connects a datagram socket to address.
func (d *UDPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	dialer := net.Dialer{Timeout: d.Timeout}

	if d.LocalPort > 0 {
		local := fmt.Sprintf(":%d", d.LocalPort)
		a, err := net.ResolveUDPAddr(network, local)
		if err != nil {
			return nil, fmt.Errorf("resolve local addr: %w", err)
		}
		dialer.LocalAddr = a
	}

	return dialer.DialContext(ctx, network, address)
}

// Close is a no-op for stateless UDP dialers.
func (d *UDPDialer) Close() error { return nil }
