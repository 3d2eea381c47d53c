package gossip

import "github.com/nodemesh/swimd/internal/domain"

// Kind identifies a SWIM protocol message variant. A flat, tagged struct is
// used instead of an interface-based sum type: message kinds never need
// dynamic dispatch, only an exhaustive switch in the inbox handler.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
	KindPing
	KindPingResponse
	KindProbeRequest
	KindProbeResponse
	KindShutdown
)

// String renders a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	case KindPing:
		return "Ping"
	case KindPingResponse:
		return "PingResponse"
	case KindProbeRequest:
		return "ProbeRequest"
	case KindProbeResponse:
		return "ProbeResponse"
	case KindShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Message is the sole unit of inter-node communication. Only the fields
// relevant to Kind are populated; the rest are zero-valued.
type Message struct {
	Kind Kind

	// Sender carries the sender's snapshot for Request, Response, Ping, and
	// ProbeRequest (on a ProbeRequest this is the requester's snapshot; the
	// witness uses its Host as the ProbingNode of the Ping it sends, with the
	// witness's own snapshot as that Ping's Sender).
	Sender *domain.Snapshot

	// Text is the application payload of Request/Response.
	Text string

	// ProbingNode is set on a Ping forwarded on behalf of a witness request
	// (identifies who the PingResponse should be reported back to), and
	// echoed unchanged on the resulting PingResponse.
	ProbingNode *domain.Host

	// Responder is the host that is replying, on PingResponse.
	Responder domain.Host

	// IsTimedOut is true iff the responder of a Ping/ProbeRequest considered
	// itself not alive (PingResponse), or iff a witness's probe of a target
	// timed out (ProbeResponse).
	IsTimedOut bool

	// TargetHost is the suspect being probed, on ProbeRequest and
	// ProbeResponse.
	TargetHost domain.Host
}

// NewRequest builds a Request message.
func NewRequest(sender domain.Snapshot, text string) Message {
	return Message{Kind: KindRequest, Sender: &sender, Text: text}
}

// NewResponse builds a Response message.
func NewResponse(sender domain.Snapshot, text string) Message {
	return Message{Kind: KindResponse, Sender: &sender, Text: text}
}

// NewPing builds a direct or indirect (witness-forwarded) Ping.
// probingNode is nil for a direct probe, set to the original requester's
// host for a witness-forwarded probe.
func NewPing(sender domain.Snapshot, probingNode *domain.Host) Message {
	return Message{Kind: KindPing, Sender: &sender, ProbingNode: probingNode}
}

// NewPingResponse builds a reply to a Ping.
func NewPingResponse(responder domain.Host, probingNode *domain.Host, isTimedOut bool) Message {
	return Message{Kind: KindPingResponse, Responder: responder, ProbingNode: probingNode, IsTimedOut: isTimedOut}
}

// NewProbeRequest builds a witness request: "ping target on my behalf."
func NewProbeRequest(requester domain.Snapshot, target domain.Host) Message {
	return Message{Kind: KindProbeRequest, Sender: &requester, TargetHost: target}
}

// NewProbeResponse builds a witness's verdict about a suspect.
func NewProbeResponse(target domain.Host, isTimedOut bool) Message {
	return Message{Kind: KindProbeResponse, TargetHost: target, IsTimedOut: isTimedOut}
}

// NewShutdown builds a termination message.
func NewShutdown() Message {
	return Message{Kind: KindShutdown}
}
