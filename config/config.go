// Package config defines the runtime configuration for pnc and provides
// helpers for parsing port tokens and tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	ncerr "pnc/internal/errors"
)

// Config holds every tuneable for a single pnc session.
type Config struct {
	// ── Connection ───────────────────────────────────────────────────
	Host      string      // destination (or bind address with -l)
	Ports     []PortRange // destination port tokens, in the order given
	LocalPort int         // -p: source port in connect mode
	Listen    bool        // -l
	UDP       bool        // -u
	KeepOpen  bool        // -k
	NoDNS     bool        // -n
	Timeout   time.Duration

	// ── Session behaviour ────────────────────────────────────────────
	HalfClose bool          // -N: shutdown socket writes on local EOF
	QuitDelay time.Duration // -q: quit after local EOF; negative disables
	ZeroIO    bool          // -z: connect, report, disconnect

	// ── Execution ────────────────────────────────────────────────────
	Execute string // -e: program path
	Command string // -c: shell command

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw [user@]host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// ── Port helpers ─────────────────────────────────────────────────────

// PortRange is an inclusive start–end pair.
type PortRange struct {
	Start int
	End   int
}

// Expand returns every port in the range, ascending.
func (pr PortRange) Expand() []int {
	out := make([]int, 0, pr.End-pr.Start+1)
	for p := pr.Start; p <= pr.End; p++ {
		out = append(out, p)
	}
	return out
}

// SinglePort reports the collapsed scalar when exactly one port token
// was given and it named exactly one port.  Callers use this to tell
// "one port" from "a range/set" (a UDP client needs the former).
func (c *Config) SinglePort() (int, bool) {
	if len(c.Ports) == 1 && c.Ports[0].Start == c.Ports[0].End {
		return c.Ports[0].Start, true
	}
	return 0, false
}

// AllPorts merges every port token into one forward-only sequence:
// tokens are ordered by their starting port, then flattened.
func (c *Config) AllPorts() []int {
	ranges := make([]PortRange, len(c.Ports))
	copy(ranges, c.Ports)
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].Start < ranges[j].Start
	})

	var out []int
	for _, pr := range ranges {
		out = append(out, pr.Expand()...)
	}
	return out
}

// ParsePortSpec accepts "80" or "80-90".  Reversed bounds are
// normalized ("90-80" behaves exactly like "80-90"); any endpoint
// outside 1-65535 or non-numeric content fails with ErrInvalidPort.
func ParsePortSpec(spec string) (PortRange, error) {
	if strings.Contains(spec, "-") {
		parts := strings.SplitN(spec, "-", 2)
		start, err := strconv.Atoi(parts[0])
		if err != nil {
			return PortRange{}, fmt.Errorf("%w: range start %q", ncerr.ErrInvalidPort, parts[0])
		}
		end, err := strconv.Atoi(parts[1])
		if err != nil {
			return PortRange{}, fmt.Errorf("%w: range end %q", ncerr.ErrInvalidPort, parts[1])
		}
		if start > end {
			start, end = end, start
		}
		if start < 1 || end > 65535 {
			return PortRange{}, fmt.Errorf("%w: range %d-%d outside 1-65535", ncerr.ErrInvalidPort, start, end)
		}
		return PortRange{Start: start, End: end}, nil
	}

	port, err := strconv.Atoi(spec)
	if err != nil {
		return PortRange{}, fmt.Errorf("%w: %q", ncerr.ErrInvalidPort, spec)
	}
	if port < 1 || port > 65535 {
		return PortRange{}, fmt.Errorf("%w: %d outside 1-65535", ncerr.ErrInvalidPort, port)
	}
	return PortRange{Start: port, End: port}, nil
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q - expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if len(c.Ports) == 0 {
		return fmt.Errorf("port is required")
	}

	if c.Listen {
		if _, ok := c.SinglePort(); !ok {
			return fmt.Errorf("listen mode takes exactly one port")
		}
		if c.ZeroIO {
			return fmt.Errorf("listen mode and zero-I/O mode are mutually exclusive")
		}
		if c.TunnelEnabled {
			return fmt.Errorf("listen mode through an SSH tunnel is not supported")
		}
	} else {
		if c.Host == "" {
			return fmt.Errorf("destination is required (use --help for usage)")
		}
		if c.UDP {
			if _, ok := c.SinglePort(); !ok {
				return fmt.Errorf("UDP mode takes exactly one port")
			}
		}
	}

	if c.Execute != "" && c.Command != "" {
		return fmt.Errorf("-e and -c are mutually exclusive")
	}

	if c.UDP && c.TunnelEnabled {
		return fmt.Errorf("UDP is not supported through SSH tunnels")
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return fmt.Errorf("tunnel host is required")
	}

	return nil
}
