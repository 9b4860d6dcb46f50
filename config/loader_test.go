package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PNC_HOST", "env-host.example.com")
	t.Setenv("PNC_UDP", "true")
	t.Setenv("PNC_KEEP_OPEN", "1")
	t.Setenv("PNC_TIMEOUT", "7")
	t.Setenv("PNC_QUIT_DELAY", "-1")
	t.Setenv("PNC_VERBOSE", "2")

	cfg := &Config{}
	LoadFromEnv(cfg)

	if cfg.Host != "env-host.example.com" {
		t.Errorf("Host = %q", cfg.Host)
	}
	if !cfg.UDP {
		t.Error("UDP should be set")
	}
	if !cfg.KeepOpen {
		t.Error("KeepOpen should be set")
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.QuitDelay != -1*time.Second {
		t.Errorf("QuitDelay = %v", cfg.QuitDelay)
	}
	if cfg.Verbose != 2 {
		t.Errorf("Verbose = %d", cfg.Verbose)
	}
}

func TestLoadFromEnv_EmptyLeavesDefaults(t *testing.T) {
	t.Setenv("PNC_HOST", "")
	t.Setenv("PNC_UDP", "")

	cfg := &Config{Host: "preset", QuitDelay: DefaultQuitDelay}
	LoadFromEnv(cfg)

	if cfg.Host != "preset" {
		t.Errorf("Host = %q, want preset", cfg.Host)
	}
	if cfg.UDP {
		t.Error("UDP should stay unset")
	}
	if cfg.QuitDelay != DefaultQuitDelay {
		t.Errorf("QuitDelay = %v", cfg.QuitDelay)
	}
}

func TestEnvBool_Variants(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"0", false},
		{"no", false},
		{"", false},
		{"banana", false},
	}

	for _, tt := range tests {
		t.Setenv("PNC_TEST_BOOL", tt.value)
		if got := envBool("PNC_TEST_BOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
