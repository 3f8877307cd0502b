package confirm

import "sync"

// Event types pushed to the operator-facing channel.
const (
	EventConnected           = "connected"
	EventHeartbeat           = "heartbeat"
	EventConfirmationRequest = "confirmation_request"
)

// Event is one message on a session's event stream.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Command   string `json:"command,omitempty"`
	ToolName  string `json:"tool_name,omitempty"`
}

// subscriberBuffer bounds each subscriber channel. Publish drops events
// for subscribers that cannot keep up rather than blocking the gate.
const subscriberBuffer = 16

// Broker fans events out to the subscribers of a session. A session may
// have any number of concurrent subscribers (reconnecting UIs).
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a new subscriber for the session. The returned
// cancel function must be called when the subscriber disconnects.
func (b *Broker) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[sessionID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, sessionID)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber of the session.
// Non-blocking: a subscriber whose buffer is full loses the event, so
// delivery is best-effort, not guaranteed. Clients that miss a
// confirmation_request recover through the pending-confirmations
// endpoint, which reads coordinator state rather than the stream.
func (b *Broker) Publish(sessionID string, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[sessionID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribers reports the subscriber count for a session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}
