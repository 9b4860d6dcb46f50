// Package core is the orchestration layer.  It composes transports,
// the endpoint pump, and the process bridge into complete operational
// modes and provides a builder that selects the right mode from a
// Config.
//
// Architecture layers (bottom → top):
//
//	transport  →  endpoint / proc  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point from
// configuration to behaviour.
package core

import "context"

// Mode represents a complete operational mode of pnc (connect or
// listen, TCP or UDP).  Each mode owns its full lifecycle from
// connection establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
