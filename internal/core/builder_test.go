package core

import (
	"testing"
	"time"

	"pnc/config"
	"pnc/internal/transport"
	"pnc/util"
)

func TestBuild_ListenDispatch(t *testing.T) {
	cfg := &config.Config{
		Listen:   true,
		Host:     "127.0.0.1",
		Ports:    []config.PortRange{{Start: 8080, End: 8080}},
		KeepOpen: true,
	}

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	lm, ok := mode.(*ListenMode)
	if !ok {
		t.Fatalf("got %T, want *ListenMode", mode)
	}
	if lm.Address != "127.0.0.1:8080" {
		t.Errorf("Address = %q", lm.Address)
	}
	if !lm.KeepOpen {
		t.Error("KeepOpen not propagated")
	}
	if lm.Network != "tcp" {
		t.Errorf("Network = %q", lm.Network)
	}
}

func TestBuild_ConnectDispatch(t *testing.T) {
	cfg := &config.Config{
		Host:  "example.com",
		Ports: []config.PortRange{{Start: 80, End: 82}},
	}

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	cm, ok := mode.(*ConnectMode)
	if !ok {
		t.Fatalf("got %T, want *ConnectMode", mode)
	}
	want := []int{80, 81, 82}
	if len(cm.Ports) != len(want) {
		t.Fatalf("Ports = %v, want %v", cm.Ports, want)
	}
	for i, p := range want {
		if cm.Ports[i] != p {
			t.Errorf("Ports[%d] = %d, want %d", i, cm.Ports[i], p)
		}
	}
	if _, ok := cm.Dialer.(*transport.TCPDialer); !ok {
		t.Errorf("Dialer = %T, want *transport.TCPDialer", cm.Dialer)
	}
}

func TestBuild_UDPSelectsDatagramDialer(t *testing.T) {
	cfg := &config.Config{
		Host:  "127.0.0.1",
		Ports: []config.PortRange{{Start: 53, End: 53}},
		UDP:   true,
	}

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	cm := mode.(*ConnectMode)
	if cm.Network != "udp" {
		t.Errorf("Network = %q, want udp", cm.Network)
	}
	if _, ok := cm.Dialer.(*transport.UDPDialer); !ok {
		t.Errorf("Dialer = %T, want *transport.UDPDialer", cm.Dialer)
	}
}

func TestBuild_TunnelSelectsSSHDialer(t *testing.T) {
	cfg := &config.Config{
		Host:          "10.0.0.5",
		Ports:         []config.PortRange{{Start: 80, End: 80}},
		TunnelEnabled: true,
		TunnelUser:    "deploy",
		TunnelHost:    "gw.example.com",
		TunnelPort:    22,
	}

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	cm := mode.(*ConnectMode)
	if _, ok := cm.Dialer.(*transport.SSHDialer); !ok {
		t.Errorf("Dialer = %T, want *transport.SSHDialer", cm.Dialer)
	}
}

func TestBuild_NoDNSRejectsHostname(t *testing.T) {
	cfg := &config.Config{
		Host:  "example.com",
		Ports: []config.PortRange{{Start: 80, End: 80}},
		NoDNS: true,
	}
	if _, err := Build(cfg, util.NewLogger(0)); err == nil {
		t.Fatal("expected error for hostname with DNS disabled")
	}
}

func TestBuild_ListenRejectsPortRange(t *testing.T) {
	cfg := &config.Config{
		Listen: true,
		Ports:  []config.PortRange{{Start: 80, End: 90}},
	}
	if _, err := Build(cfg, util.NewLogger(0)); err == nil {
		t.Fatal("expected error for listen with a port range")
	}
}

func TestBuild_SessionOptionsPropagate(t *testing.T) {
	cfg := &config.Config{
		Host:      "127.0.0.1",
		Ports:     []config.PortRange{{Start: 9000, End: 9000}},
		HalfClose: true,
		QuitDelay: 5 * time.Second,
		Command:   "cat",
	}

	mode, err := Build(cfg, util.NewLogger(0))
	if err != nil {
		t.Fatal(err)
	}

	opt := mode.(*ConnectMode).Options
	if !opt.HalfClose {
		t.Error("HalfClose not propagated")
	}
	if opt.QuitDelay != 5*time.Second {
		t.Errorf("QuitDelay = %v", opt.QuitDelay)
	}
	if opt.Command != "cat" {
		t.Errorf("Command = %q", opt.Command)
	}
}
