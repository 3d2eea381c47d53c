// Package router is the driver layer that turns an external request ("say
// hello from A to B", "shut everything down") into Registry traffic. It
// owns no membership logic itself — every decision it makes is either
// bookkeeping (has A been created yet?) or a direct call into gossip.
package router

import (
	"sort"
	"sync"

	"github.com/nodemesh/swimd/internal/domain"
	"github.com/nodemesh/swimd/internal/infra/gossip"
)

// Router tracks every node it has created against a shared Registry and
// provides idempotent create-then-send operations over it.
type Router struct {
	mu       sync.Mutex
	registry *gossip.Registry
	config   gossip.Config
	nodes    map[domain.Host]*gossip.Node
	opts     []gossip.NodeOption
	tracer   gossip.SpanTracer
}

// New returns a Router backed by registry, creating any node it Ensures
// with cfg and opts.
func New(registry *gossip.Registry, cfg gossip.Config, opts ...gossip.NodeOption) *Router {
	return &Router{
		registry: registry,
		config:   cfg,
		nodes:    make(map[domain.Host]*gossip.Node),
		opts:     opts,
	}
}

// WithTracer attaches a SpanTracer that wraps SendApplication calls. It
// returns rt so it can be chained onto New.
func (rt *Router) WithTracer(t gossip.SpanTracer) *Router {
	rt.tracer = t
	return rt
}

// Ensure returns the node for host, creating and starting it first if this
// Router has not seen host before. Idempotent: a second Ensure for the same
// host returns the existing node without side effects.
func (rt *Router) Ensure(host domain.Host) *gossip.Node {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if n, ok := rt.nodes[host]; ok {
		return n
	}
	n := gossip.NewNode(host, rt.registry, rt.config, rt.opts...)
	rt.nodes[host] = n
	return n
}

// Node returns the node for host and whether this Router has created it.
func (rt *Router) Node(host domain.Host) (*gossip.Node, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	n, ok := rt.nodes[host]
	return n, ok
}

// Hosts returns every host this Router has created, sorted ascending.
func (rt *Router) Hosts() []domain.Host {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	hosts := make([]domain.Host, 0, len(rt.nodes))
	for h := range rt.nodes {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool { return hosts[i] < hosts[j] })
	return hosts
}

// SendApplication ensures from exists, then sends a Request introducing
// from to to via the Registry. to need not have been Ensured by this
// Router — an unknown destination is dropped by the Registry, not an error
// here.
func (rt *Router) SendApplication(from, to domain.Host) {
	if rt.tracer != nil {
		span := rt.tracer.StartSpan("router.SendApplication")
		defer func() { rt.tracer.EndSpan(span, nil) }()
	}

	n := rt.Ensure(from)
	text := "hello from " + from.String()
	rt.registry.Send(to, gossip.NewRequest(n.Snapshot(), text))
}

// Shutdown sends Shutdown to every node this Router has created, and waits
// for each to finish both of its activities.
func (rt *Router) Shutdown() {
	rt.mu.Lock()
	nodes := make([]*gossip.Node, 0, len(rt.nodes))
	for _, n := range rt.nodes {
		nodes = append(nodes, n)
	}
	rt.mu.Unlock()

	for _, n := range nodes {
		n.Shutdown()
	}
	for _, n := range nodes {
		n.Wait()
	}
}
