// Package eventsink defines the EventSink port (spec §6) and a default
// in-process implementation. Events are plain values, never object
// references, so a consumer can store or forward them without holding
// internal negotiator/sparring/fuzzer state — spec §9's "message-passing
// contract". The default Hub is grounded directly in the teacher's
// websocket broadcast hub (internal/api/websocket.go): a buffered channel
// drained by a single goroutine under a mutex-guarded subscriber set,
// generalized here from "push bytes to websocket connections" to "push a
// typed Event to registered subscriber funcs" so it carries no transport
// dependency (the spec scopes WebSocket transport itself out of the core).
package eventsink

import "sync"

// Kind identifies which of the spec §6 emitted events a value carries.
type Kind string

const (
	KindBundleSealedAccepted Kind = "bundle_sealed_accepted"
	KindBundleRevealed       Kind = "bundle_revealed"
	KindBundleExpired        Kind = "bundle_expired"
	KindNegotiationCompleted Kind = "negotiation_completed"
	KindChallengeIssued      Kind = "challenge_issued"
	KindCounterProcessed     Kind = "counter_processed"
	KindFuzzProgress         Kind = "fuzz_progress"
	KindFuzzCompleted        Kind = "fuzz_completed"
)

// Event is the uniform envelope emitted for every spec §6 event. Payload
// holds the event-specific value (e.g. BundleSealedAccepted); it is always a
// plain struct, never a pointer into negotiator/sparring/fuzzer state.
type Event struct {
	Kind    Kind
	Payload any
}

// BundleSealedAccepted is the payload for KindBundleSealedAccepted.
type BundleSealedAccepted struct {
	BundleID      string
	ScoutID       string
	Kind          string
	PromisedValue int64
	CreatedAtUnixMs int64
	ExpiresAtUnixMs int64
}

// BundleRevealed is the payload for KindBundleRevealed.
type BundleRevealed struct {
	BundleID string
	ScoutID  string
}

// BundleExpired is the payload for KindBundleExpired.
type BundleExpired struct {
	BundleID string
	Reason   string
}

// NegotiationCompleted is the payload for KindNegotiationCompleted.
type NegotiationCompleted struct {
	BlockID           string
	CoalitionMembers  []string
	TotalValue        int64
	ShapleyMap        map[string]float64
	RejectedBundleIDs []string
	ExecTimeMs        float64
}

// ChallengeIssued is the payload for KindChallengeIssued.
type ChallengeIssued struct {
	ChallengeID       string
	BundleID          string
	AttackVectorCount int
	OverallScore      float64
	Recommendation    string
}

// CounterProcessed is the payload for KindCounterProcessed.
type CounterProcessed struct {
	CounterID       string
	ChallengeID     string
	ResponseTimeMs  int64
	WithinDeadline  bool
	Decision        string
	Confidence      float64
}

// FuzzProgress is the payload for KindFuzzProgress.
type FuzzProgress struct {
	Completed            int
	Total                 int
	VulnerabilitiesSoFar int
}

// FuzzCompleted is the payload for KindFuzzCompleted.
type FuzzCompleted struct {
	Stats any
}

// Sink is the port every consumer of core events implements.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// Null discards every event; useful for tests and for hosts that do not
// care about the event stream.
var Null Sink = SinkFunc(func(Event) {})

// Hub is the default in-process EventSink: a bounded channel fanned out to
// registered subscriber functions by a single consumer goroutine, exactly
// the teacher's Hub shape (broadcast chan []byte, mutex-guarded client set,
// one Run() goroutine) with the websocket.Conn replaced by a plain Go
// callback and []byte replaced by the typed Event.
type Hub struct {
	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextID      int
	events      chan Event
	done        chan struct{}
}

// NewHub creates a Hub with the given channel buffer depth and starts its
// dispatch loop. Call Close to stop it.
func NewHub(buffer int) *Hub {
	h := &Hub{
		subscribers: make(map[int]func(Event)),
		events:      make(chan Event, buffer),
		done:        make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case e := <-h.events:
			h.mu.Lock()
			for _, fn := range h.subscribers {
				fn(e)
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Emit implements Sink. It never blocks the caller on a slow subscriber: the
// dispatch loop invokes subscribers synchronously but Emit itself only
// enqueues onto the buffered channel.
func (h *Hub) Emit(e Event) {
	select {
	case h.events <- e:
	default:
		// Buffer full: drop rather than block the negotiation/sparring/
		// fuzzer hot path, matching the teacher's write-deadline-then-drop
		// posture in websocket.go (a slow consumer must never stall the
		// producer).
	}
}

// Subscribe registers fn to receive every future event and returns an
// unsubscribe function.
func (h *Hub) Subscribe(fn func(Event)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
	}
}

// Close stops the dispatch loop.
func (h *Hub) Close() {
	close(h.done)
}
