// Package cmd wires up the CLI flags and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"pnc/config"
	"pnc/internal/core"
	"pnc/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pnc/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the appropriate pnc mode.
func Execute(ctx context.Context, args []string) error {
	cfg := &config.Config{
		Timeout:   config.DefaultConnTimeout,
		QuitDelay: config.DefaultQuitDelay,
	}
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("pnc", flag.ContinueOnError)

	// ── connection ───────────────────────────────────────────────
	fs.BoolVarP(&cfg.Listen, "listen", "l", cfg.Listen, "Listen mode, for inbound connects")
	fs.BoolVarP(&cfg.UDP, "udp", "u", cfg.UDP, "UDP mode (default: TCP)")
	fs.BoolVarP(&cfg.KeepOpen, "keep-open", "k", cfg.KeepOpen, "Keep inbound sockets open for multiple connects (with -l)")
	fs.BoolVarP(&cfg.NoDNS, "no-dns", "n", cfg.NoDNS, "Numeric-only, no DNS resolution")
	fs.BoolVarP(&cfg.ZeroIO, "zero-io", "z", cfg.ZeroIO, "Zero-I/O mode (port scanning)")
	fs.IntVarP(&cfg.LocalPort, "source-port", "p", cfg.LocalPort, "Local source port (connect mode)")

	var timeoutSec int
	fs.IntVarP(&timeoutSec, "timeout", "w", 0, "Connect timeout in seconds")

	// ── session behaviour ────────────────────────────────────────
	fs.BoolVarP(&cfg.HalfClose, "shutdown", "N", cfg.HalfClose, "Shutdown socket writes on local EOF")

	quitDelaySec := int(cfg.QuitDelay / time.Second)
	fs.IntVarP(&quitDelaySec, "quit-after", "q", quitDelaySec, "Quit after EOF on stdin and delay of SECS (negative: never)")

	// ── execution ────────────────────────────────────────────────
	fs.StringVarP(&cfg.Execute, "exec", "e", cfg.Execute, "Execute a program over the connection")
	fs.StringVarP(&cfg.Command, "command", "c", cfg.Command, "Execute a shell command over the connection")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || len(args) == 0 {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("pnc %s\n", version)
		return nil
	}

	if timeoutSec > 0 {
		cfg.Timeout = time.Duration(timeoutSec) * time.Second
	}
	cfg.QuitDelay = time.Duration(quitDelaySec) * time.Second

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return fmt.Errorf("tunnel: %w", err)
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// parsePositional handles "[DEST] PORT [PORT…]": with a single
// remaining argument it is the port; with more, the first is the
// destination and the rest are port tokens (single ports or ranges).
func parsePositional(cfg *config.Config, remaining []string) error {
	if len(remaining) == 0 {
		return fmt.Errorf("port required (use --help for usage)")
	}

	portArgs := remaining
	if len(remaining) >= 2 {
		cfg.Host = remaining[0]
		portArgs = remaining[1:]
	}

	for _, arg := range portArgs {
		pr, err := config.ParsePortSpec(arg)
		if err != nil {
			return err
		}
		cfg.Ports = append(cfg.Ports, pr)
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `pnc - pipe netcat v%s

A TCP/UDP client and server that pumps raw bytes between a network
peer and local stdio or a subprocess.

Usage:
  pnc [options] DEST PORT [PORT...]           Connect
  pnc -l [options] [DEST] PORT                Listen
  pnc -vz [options] DEST PORT-RANGE           Scan

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  pnc example.com 80                          TCP connect
  pnc -l 8080                                 Listen on 8080
  pnc -vz host.example.com 20-25 80 443       Port scan
  pnc -l -k -e /bin/sh 9999                   Serve a shell per client
  echo "hello" | pnc -N host.example.com 9000 Pipe data, half-close on EOF
`)
}
