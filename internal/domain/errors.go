package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Registry errors
	ErrUnknownHost = errors.New("host not known to the transport registry")
)
