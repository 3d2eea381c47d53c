// Package gossip implements the SWIM membership protocol core: the
// per-node state machine, the membership view, and the transport registry
// all inter-node traffic flows through.
//
// SWIM cycle (every PingPeriod):
//  1. Pick a random non-Failed member → Ping
//  2. PingResponse reports whether the target considers itself alive
//  3. A self-reported timeout → Suspected, then K witnesses are asked to
//     probe on our behalf via ProbeRequest/ProbeResponse
//  4. A second direct timeout while already Suspected → Failed
//  5. Membership state piggybacks on every Request/Response/Ping via sender
//     snapshots — there is no separate gossip message.
package gossip

import "time"

// Config controls the SWIM protocol parameters for a single node.
type Config struct {
	// PingPeriod is how often the prober fires. Default: 1s.
	PingPeriod time.Duration

	// WitnessCount (K) is the number of members asked to indirectly probe a
	// timed-out target. Default: 3.
	WitnessCount int
}

// DefaultConfig returns the protocol's default tuning.
func DefaultConfig() Config {
	return Config{
		PingPeriod:   1 * time.Second,
		WitnessCount: 3,
	}
}
