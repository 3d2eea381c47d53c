package gossip

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/nodemesh/swimd/internal/domain"
)

// inboxCapacity bounds the Go channel backing a node's inbox. It is large
// enough that normal probe traffic never blocks a sender; Send treats a
// full inbox the same as an unregistered host (best-effort, drop and log).
const inboxCapacity = 1024

// SpanTracer lets an external tracer record spans around gossip operations
// without the gossip package importing the observability package. A span
// handle is an opaque value: gossip never inspects it, only passes it back
// to EndSpan.
type SpanTracer interface {
	StartSpan(operation string) any
	EndSpan(span any, err error)
}

// Node is a single member of the cluster: one goroutine draining its inbox
// in receive order, one goroutine firing the periodic prober, both
// synchronized by mu per the single-lock-per-node discipline.
type Node struct {
	host     domain.Host
	registry *Registry
	config   Config

	mu           sync.Mutex
	selfLiveness domain.Liveness
	members      view
	rng          *rand.Rand

	inbox chan Message
	done  chan struct{}
	wg    sync.WaitGroup

	onTransition func(to domain.Liveness)
	onProbe      func(outcome string)
	onOutcome    func(outcome string)
	tracer       SpanTracer
}

// NodeOption customizes a Node at construction time, primarily so the
// observability layer can attach counters without gossip importing it.
type NodeOption func(*Node)

// WithTransitionHook registers a callback invoked whenever set_state changes
// a peer's recorded liveness.
func WithTransitionHook(fn func(to domain.Liveness)) NodeOption {
	return func(n *Node) { n.onTransition = fn }
}

// WithProbeHook registers a callback invoked once per prober tick with the
// tick's outcome ("sent" or "skipped").
func WithProbeHook(fn func(outcome string)) NodeOption {
	return func(n *Node) { n.onProbe = fn }
}

// WithOutcomeHook registers a callback invoked once per resolved probe
// round-trip, with outcome one of "direct_ack", "indirect_ack", or
// "suspect". Intended for a Prometheus counter.
func WithOutcomeHook(fn func(outcome string)) NodeOption {
	return func(n *Node) { n.onOutcome = fn }
}

// WithSpanTracer attaches a SpanTracer that wraps every prober tick and
// inbox message handled by this node.
func WithSpanTracer(t SpanTracer) NodeOption {
	return func(n *Node) { n.tracer = t }
}

// NewNode allocates a node's inbox, registers it with registry under host,
// and starts its two activities. The returned Node is a handle suitable for
// test inspection and for Router-driven traffic.
func NewNode(host domain.Host, registry *Registry, cfg Config, opts ...NodeOption) *Node {
	n := &Node{
		host:         host,
		registry:     registry,
		config:       cfg,
		selfLiveness: domain.Alive,
		members:      newView(),
		rng:          rand.New(rand.NewSource(int64(host) + 1)),
		inbox:        make(chan Message, inboxCapacity),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}

	registry.Register(host, n)

	n.wg.Add(2)
	go n.runInbox()
	go n.runProber()

	return n
}

// Deliver satisfies Sink. It never blocks: a full inbox is logged and
// reported back to the caller as undelivered, so the Registry can count it
// as a drop via onDrop.
func (n *Node) Deliver(msg Message) bool {
	select {
	case n.inbox <- msg:
		return true
	default:
		log.Printf("gossip: %s inbox full, dropping %s", n.host, msg.Kind)
		return false
	}
}

// Host returns the node's identity.
func (n *Node) Host() domain.Host {
	return n.host
}

// Snapshot returns a deep value copy of this node's identity, self
// liveness, and member view, suitable for attaching to an outbound message
// or for test inspection.
func (n *Node) Snapshot() domain.Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Node) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Host:         n.host,
		SelfLiveness: n.selfLiveness,
		Members:      n.members.snapshot(),
	}
}

// SetSelfLiveness is a test/administrative override. After Failed, the
// prober stops firing and incoming Pings are answered with is_timed_out=true.
func (n *Node) SetSelfLiveness(state domain.Liveness) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.selfLiveness = state
}

// Shutdown enqueues a Shutdown message, the same path any other sender
// uses. The inbox handler exits on processing it; the prober observes
// termination within one PingPeriod via the done channel.
func (n *Node) Shutdown() {
	n.Deliver(NewShutdown())
}

// Wait blocks until both of the node's activities have exited.
func (n *Node) Wait() {
	n.wg.Wait()
}

func (n *Node) runInbox() {
	defer n.wg.Done()
	for msg := range n.inbox {
		if msg.Kind == KindShutdown {
			close(n.done)
			return
		}
		n.handle(msg)
	}
}

func (n *Node) handle(msg Message) {
	if n.tracer != nil {
		span := n.tracer.StartSpan("gossip.handle." + msg.Kind.String())
		defer func() { n.tracer.EndSpan(span, nil) }()
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	switch msg.Kind {
	case KindRequest:
		n.members.add(msg.Sender.Host)
		reply := NewResponse(n.snapshotLocked(), "hi")
		n.registry.Send(msg.Sender.Host, reply)

	case KindResponse:
		n.members.add(msg.Sender.Host)

	case KindPing:
		n.members.merge(n.host, msg.Sender.Members)
		n.members.add(msg.Sender.Host)
		isTimedOut := n.selfLiveness != domain.Alive
		reply := NewPingResponse(n.host, msg.ProbingNode, isTimedOut)
		n.registry.Send(msg.Sender.Host, reply)

	case KindPingResponse:
		if msg.ProbingNode != nil {
			reply := NewProbeResponse(msg.Responder, msg.IsTimedOut)
			n.registry.Send(*msg.ProbingNode, reply)
			return
		}
		if msg.IsTimedOut {
			n.setStateLocked(msg.Responder, domain.Suspected)
			n.reportOutcome("suspect")
			witnesses := n.members.randomAliveWitnesses(n.rng, n.config.WitnessCount)
			snap := n.snapshotLocked()
			for _, w := range witnesses {
				n.registry.Send(w, NewProbeRequest(snap, msg.Responder))
			}
		} else {
			n.setStateLocked(msg.Responder, domain.Alive)
			n.reportOutcome("direct_ack")
		}

	case KindProbeRequest:
		target := msg.TargetHost
		from := msg.Sender.Host
		n.registry.Send(target, NewPing(n.snapshotLocked(), &from))

	case KindProbeResponse:
		if !msg.IsTimedOut {
			n.setStateLocked(msg.TargetHost, domain.Alive)
			n.reportOutcome("indirect_ack")
		}

	case KindShutdown:
		// handled in runInbox before dispatch reaches here.
	}
}

// setStateLocked applies a liveness transition and fires the transition
// hook. Callers must hold mu.
func (n *Node) setStateLocked(host domain.Host, newState domain.Liveness) {
	before, _ := n.members.getState(host)
	n.members.setState(host, newState)
	after, ok := n.members.getState(host)
	if ok && after != before && n.onTransition != nil {
		n.onTransition(after)
	}
}

func (n *Node) runProber() {
	defer n.wg.Done()
	ticker := time.NewTicker(n.config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-n.done:
			return
		case <-ticker.C:
			n.probeTick()
		}
	}
}

func (n *Node) probeTick() {
	if n.tracer != nil {
		span := n.tracer.StartSpan("gossip.probeTick")
		defer func() { n.tracer.EndSpan(span, nil) }()
	}

	n.mu.Lock()
	if n.selfLiveness == domain.Failed {
		n.mu.Unlock()
		n.reportProbe("skipped")
		return
	}
	target, ok := n.members.randomAliveTarget(n.rng)
	if !ok {
		n.mu.Unlock()
		n.reportProbe("skipped")
		return
	}
	snap := n.snapshotLocked()
	n.mu.Unlock()

	n.registry.Send(target, NewPing(snap, nil))
	n.reportProbe("sent")
}

func (n *Node) reportProbe(outcome string) {
	if n.onProbe != nil {
		n.onProbe(outcome)
	}
}

func (n *Node) reportOutcome(outcome string) {
	if n.onOutcome != nil {
		n.onOutcome(outcome)
	}
}
