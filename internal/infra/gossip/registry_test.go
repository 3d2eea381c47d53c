package gossip

import (
	"sync"
	"testing"

	"github.com/nodemesh/swimd/internal/domain"
)

type recordingSink struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *recordingSink) Deliver(msg Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recordingSink) received() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.msgs))
	copy(out, r.msgs)
	return out
}

func TestRegistrySendDeliversToRegisteredSink(t *testing.T) {
	r := NewRegistry(nil)
	sink := &recordingSink{}
	r.Register(1, sink)

	r.Send(1, NewShutdown())

	if got := sink.received(); len(got) != 1 || got[0].Kind != KindShutdown {
		t.Errorf("received = %v, want one Shutdown message", got)
	}
}

func TestRegistrySendUnknownHostDropsSilently(t *testing.T) {
	var dropped domain.Host
	r := NewRegistry(func(to domain.Host) { dropped = to })

	r.Send(99, NewShutdown())

	if dropped != 99 {
		t.Errorf("onDrop called with %v, want 99", dropped)
	}
}

func TestRegistryRegisterOverwritesSilently(t *testing.T) {
	r := NewRegistry(nil)
	first := &recordingSink{}
	second := &recordingSink{}

	r.Register(1, first)
	r.Register(1, second)
	r.Send(1, NewShutdown())

	if len(first.received()) != 0 {
		t.Error("the superseded sink must not receive further traffic")
	}
	if len(second.received()) != 1 {
		t.Error("the latest registration must receive traffic")
	}
}

func TestRegistryUnregisterThenSendDrops(t *testing.T) {
	r := NewRegistry(nil)
	sink := &recordingSink{}
	r.Register(1, sink)
	r.Unregister(1)

	r.Send(1, NewShutdown())

	if len(sink.received()) != 0 {
		t.Error("send after unregister must not reach the old sink")
	}
}

func TestRegistryUnregisterUnknownHostIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	r.Unregister(42)
}

func TestRegistryHosts(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(1, &recordingSink{})
	r.Register(2, &recordingSink{})

	hosts := r.Hosts()
	if len(hosts) != 2 {
		t.Fatalf("len(Hosts()) = %d, want 2", len(hosts))
	}
}

func TestRegistryGetReturnsRegisteredSink(t *testing.T) {
	r := NewRegistry(nil)
	sink := &recordingSink{}
	r.Register(1, sink)

	got, ok := r.Get(1)
	if !ok || got != sink {
		t.Errorf("Get(1) = (%v, %v), want (sink, true)", got, ok)
	}

	if _, ok := r.Get(99); ok {
		t.Error("Get on an unregistered host should report false")
	}
}

// rejectingSink always reports its message as undelivered, simulating a
// full inbox.
type rejectingSink struct{}

func (rejectingSink) Deliver(msg Message) bool { return false }

func TestRegistrySendCountsRejectedDeliveryAsDrop(t *testing.T) {
	var dropped domain.Host
	r := NewRegistry(func(to domain.Host) { dropped = to })
	r.Register(7, rejectingSink{})

	r.Send(7, NewShutdown())

	if dropped != 7 {
		t.Errorf("onDrop called with %v, want 7 (full-inbox rejection must count as a drop)", dropped)
	}
}
