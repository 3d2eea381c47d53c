package daemon

import (
	"context"
	"strings"
	"time"

	"github.com/nodemesh/swimd/internal/app/router"
	"github.com/nodemesh/swimd/internal/domain"
	"github.com/nodemesh/swimd/internal/infra/gossip"
	"github.com/nodemesh/swimd/internal/infra/observability"
)

// tracerAdapter satisfies gossip.SpanTracer by wrapping an
// observability.Tracer, so neither gossip nor app/router needs to import
// observability directly.
type tracerAdapter struct {
	tracer *observability.Tracer
}

func (a tracerAdapter) StartSpan(operation string) any {
	return a.tracer.StartSpan(context.Background(), operation, nil)
}

func (a tracerAdapter) EndSpan(span any, err error) {
	a.tracer.EndSpan(span.(*observability.Span), err)
}

// Cluster is the bootstrapped process: a Registry and Router shared by
// every node this process hosts, plus a Tracer fed by hooks into the
// gossip core. It owns no network listener itself — api.Server wraps it.
type Cluster struct {
	Config    Config
	Router    *router.Router
	Tracer    *observability.Tracer
	StartedAt time.Time
}

// NewCluster wires the gossip core to the observability counters named in
// the Prometheus metrics list: a probe's resolved outcome feeds
// ProbesTotal, a liveness transition feeds SuspicionTransitionsTotal, and a
// Registry drop feeds RegistryDropsTotal.
func NewCluster(cfg Config) *Cluster {
	registry := gossip.NewRegistry(func(domain.Host) {
		observability.RegistryDropsTotal.Inc()
	})

	gossipCfg := gossip.Config{
		PingPeriod:   time.Duration(cfg.Gossip.PingPeriod),
		WitnessCount: cfg.Gossip.WitnessCount,
	}

	tracer := observability.NewTracer(observability.TracerConfig{
		Enabled:  cfg.Observability.MetricsEnabled,
		MaxSpans: cfg.Observability.MaxSpans,
	})
	adapter := tracerAdapter{tracer: tracer}

	rt := router.New(registry, gossipCfg,
		gossip.WithOutcomeHook(func(outcome string) {
			observability.ProbesTotal.WithLabelValues(outcome).Inc()
		}),
		gossip.WithTransitionHook(func(to domain.Liveness) {
			observability.SuspicionTransitionsTotal.WithLabelValues(strings.ToLower(to.String())).Inc()
		}),
		gossip.WithSpanTracer(adapter),
	).WithTracer(adapter)

	return &Cluster{Config: cfg, Router: rt, Tracer: tracer, StartedAt: time.Now()}
}

// Seed ensures every host in hosts has a running node, for a daemon started
// with a fixed member list (the CLI's --nodes flag).
func (c *Cluster) Seed(hosts []domain.Host) {
	for _, h := range hosts {
		c.Router.Ensure(h)
	}
}

// RefreshMemberCount publishes MemberCount for every node this Cluster's
// Router has created. Called periodically by the API server's metrics
// gate, since gossip.Node has no push-on-change hook for view size.
func (c *Cluster) RefreshMemberCount() {
	for _, h := range c.Router.Hosts() {
		n, ok := c.Router.Node(h)
		if !ok {
			continue
		}
		observability.MemberCount.WithLabelValues(h.String()).Set(float64(len(n.Snapshot().Members)))
	}
}

// Shutdown stops every node the Router has created.
func (c *Cluster) Shutdown() {
	c.Router.Shutdown()
}
