package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the PNC_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flag parsing so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("PNC_HOST"); v != "" {
		cfg.Host = v
	}
	if envBool("PNC_LISTEN") {
		cfg.Listen = true
	}
	if envBool("PNC_UDP") {
		cfg.UDP = true
	}
	if envBool("PNC_NO_DNS") {
		cfg.NoDNS = true
	}
	if envBool("PNC_KEEP_OPEN") {
		cfg.KeepOpen = true
	}
	if envBool("PNC_HALF_CLOSE") {
		cfg.HalfClose = true
	}
	if v := envInt("PNC_TIMEOUT"); v > 0 {
		cfg.Timeout = secondsDuration(v)
	}
	if v := os.Getenv("PNC_QUIT_DELAY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QuitDelay = secondsDuration(n)
		}
	}
	if v := envInt("PNC_LOCAL_PORT"); v > 0 {
		cfg.LocalPort = v
	}

	// SSH tunnel
	if v := os.Getenv("PNC_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("PNC_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("PNC_SSH_PASSWORD") {
		cfg.SSHPassword = true
	}
	if envBool("PNC_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if envBool("PNC_STRICT_HOSTKEY") {
		cfg.StrictHostKey = true
	}
	if v := os.Getenv("PNC_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("PNC_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
