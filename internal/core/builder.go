package core

import (
	"fmt"

	"pnc/config"
	"pnc/internal/transport"
	"pnc/tunnel"
	"pnc/util"
)

// Build constructs the appropriate Mode from the given configuration.
// This is the single dispatch point from flags to behaviour: the four
// variants (client/server × tcp/udp) are selected once, here.
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.Listen {
		return buildListen(cfg, logger)
	}
	return buildConnect(cfg, logger)
}

// ── mode builders ────────────────────────────────────────────────────

func buildConnect(cfg *config.Config, logger *util.Logger) (Mode, error) {
	if cfg.NoDNS {
		if _, err := util.LookupHost(cfg.Host, true); err != nil {
			return nil, err
		}
	}

	network := "tcp"
	if cfg.UDP {
		network = "udp"
	}

	return &ConnectMode{
		Dialer:  buildDialer(cfg, logger),
		Host:    cfg.Host,
		Ports:   cfg.AllPorts(),
		Network: network,
		NoDNS:   cfg.NoDNS,
		ZeroIO:  cfg.ZeroIO,
		Options: sessionOptions(cfg),
		Logger:  logger,
	}, nil
}

func buildListen(cfg *config.Config, logger *util.Logger) (Mode, error) {
	port, ok := cfg.SinglePort()
	if !ok {
		return nil, fmt.Errorf("listen mode takes exactly one port")
	}

	network := "tcp"
	if cfg.UDP {
		network = "udp"
	}

	return &ListenMode{
		Address:  util.FormatAddr(cfg.Host, port),
		Network:  network,
		KeepOpen: cfg.KeepOpen,
		Options:  sessionOptions(cfg),
		Logger:   logger,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&tunnel.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
		}, logger)
	}

	if cfg.UDP {
		return &transport.UDPDialer{
			Timeout:   cfg.Timeout,
			LocalPort: cfg.LocalPort,
		}
	}

	return &transport.TCPDialer{
		Timeout:   cfg.Timeout,
		LocalPort: cfg.LocalPort,
	}
}

// sessionOptions extracts the per-connection behaviour from cfg.
func sessionOptions(cfg *config.Config) SessionOptions {
	return SessionOptions{
		HalfClose: cfg.HalfClose,
		QuitDelay: cfg.QuitDelay,
		Program:   cfg.Execute,
		Command:   cfg.Command,
	}
}
