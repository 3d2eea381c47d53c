package gossip

import (
	"sync"

	"github.com/nodemesh/swimd/internal/domain"
)

// Sink receives messages addressed to a registered host. Deliver returns
// false if the message was discarded (e.g. a full inbox), so the Registry
// can count the drop. A *Node satisfies Sink via its inbox channel; tests
// may register a bare channel-backed stand-in instead.
type Sink interface {
	Deliver(msg Message) bool
}

// Registry is the single exclusive-mutex transport all inter-node traffic
// flows through. It owns no network socket — hosts in this implementation
// share a process, so "transport" reduces to an in-memory directory plus
// non-blocking delivery. Lock ordering: a node's own lock is always
// acquired before Registry.mu, never the reverse.
type Registry struct {
	mu     sync.Mutex
	sinks  map[domain.Host]Sink
	onDrop func(to domain.Host)
}

// NewRegistry returns an empty registry. onDrop, if non-nil, is called
// whenever Send silently discards a message (unknown host or full inbox);
// it is intended for a metrics counter and must not block or re-enter the
// registry.
func NewRegistry(onDrop func(to domain.Host)) *Registry {
	return &Registry{
		sinks:  make(map[domain.Host]Sink),
		onDrop: onDrop,
	}
}

// Register inserts host → sink. A second registration under the same host
// overwrites the first silently; callers that need "create if absent"
// semantics (the Router does) track host existence themselves rather than
// relying on this call to reject duplicates.
func (r *Registry) Register(host domain.Host, sink Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks[host] = sink
}

// Unregister removes host, if present. Removing an unknown host is a no-op.
func (r *Registry) Unregister(host domain.Host) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sinks, host)
}

// Hosts returns every currently registered host, in no particular order.
func (r *Registry) Hosts() []domain.Host {
	r.mu.Lock()
	defer r.mu.Unlock()
	hosts := make([]domain.Host, 0, len(r.sinks))
	for h := range r.sinks {
		hosts = append(hosts, h)
	}
	return hosts
}

// Get returns the sink registered as host, if any.
func (r *Registry) Get(host domain.Host) (Sink, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sink, ok := r.sinks[host]
	return sink, ok
}

// Send delivers msg to the node registered as to. A destination that is
// unknown, or whose inbox rejects the message, is silently dropped (onDrop
// is invoked, no error returned to the sender): a crashed-and-removed peer
// or a momentarily saturated inbox must never cause a blocked prober.
func (r *Registry) Send(to domain.Host, msg Message) {
	r.mu.Lock()
	sink, ok := r.sinks[to]
	r.mu.Unlock()

	if !ok {
		if r.onDrop != nil {
			r.onDrop(to)
		}
		return
	}
	if !sink.Deliver(msg) {
		if r.onDrop != nil {
			r.onDrop(to)
		}
	}
}
