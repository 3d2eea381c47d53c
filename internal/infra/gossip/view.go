package gossip

import (
	"math/rand"

	"github.com/nodemesh/swimd/internal/domain"
)

// view is a node's local map from host to last-known liveness. It carries
// no synchronization of its own: callers must hold the owning node's lock
// for the duration of any call.
type view map[domain.Host]domain.Liveness

func newView() view {
	return make(view)
}

// add sets host → Alive if absent. If present, the state is left unchanged
// (a duplicate "Request" does not resurrect a Suspected/Failed entry).
func (v view) add(host domain.Host) {
	if _, ok := v[host]; !ok {
		v[host] = domain.Alive
	}
}

// merge applies a peer's member view to this one. Failed entries are
// removed (a terminal verdict propagates as a tombstone-free deletion, so a
// rejoin under the same id re-enters fresh via add); every other state
// overwrites unconditionally. selfHost is never merged into its own view
// (invariant I1).
func (v view) merge(selfHost domain.Host, other map[domain.Host]domain.Liveness) {
	for h, s := range other {
		if h == selfHost {
			continue
		}
		if s == domain.Failed {
			delete(v, h)
			continue
		}
		v[h] = s
	}
}

// setState assigns a new liveness, special-casing suspicion escalation: a
// host already Suspected that is set to Suspected again becomes Failed.
// Absent hosts are a no-op.
func (v view) setState(host domain.Host, newState domain.Liveness) {
	current, ok := v[host]
	if !ok {
		return
	}
	if newState == domain.Suspected && current == domain.Suspected {
		v[host] = domain.Failed
		return
	}
	v[host] = newState
}

func (v view) getState(host domain.Host) (domain.Liveness, bool) {
	s, ok := v[host]
	return s, ok
}

// randomAliveTarget picks uniformly among hosts whose state is not Failed
// (Suspected hosts are included so they can be re-probed, letting the
// Suspected → Failed escalation fire on a second direct timeout).
func (v view) randomAliveTarget(rng *rand.Rand) (domain.Host, bool) {
	candidates := make([]domain.Host, 0, len(v))
	for h, s := range v {
		if s != domain.Failed {
			candidates = append(candidates, h)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// randomAliveWitnesses draws up to k distinct hosts, without replacement,
// from hosts whose state is exactly Alive.
func (v view) randomAliveWitnesses(rng *rand.Rand, k int) []domain.Host {
	candidates := make([]domain.Host, 0, len(v))
	for h, s := range v {
		if s == domain.Alive {
			candidates = append(candidates, h)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if k > len(candidates) {
		k = len(candidates)
	}
	return candidates[:k]
}

// snapshot returns a deep copy of the view, suitable for attaching to an
// outbound message.
func (v view) snapshot() map[domain.Host]domain.Liveness {
	out := make(map[domain.Host]domain.Liveness, len(v))
	for h, s := range v {
		out[h] = s
	}
	return out
}
