// Package negotiator implements the Negotiator Orchestrator (spec §4.C6):
// the accept -> reveal -> negotiate -> distribute lifecycle that owns the
// pending and revealed bundle pools exclusively between acceptance and
// emission. It is the one component that calls every other core package
// (scoutregistry, conflict, coalition, distribution, eventsink) in a single
// critical section per round, the same way the teacher's
// internal/shadow/shadow_runner.go owns one aggregate pass over its inputs
// under a single lock rather than many fine-grained ones.
package negotiator

import (
	"sync"
	"time"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
	"github.com/rawblock/mev-negotiator-core/internal/coalition"
	"github.com/rawblock/mev-negotiator-core/internal/conflict"
	"github.com/rawblock/mev-negotiator-core/internal/distribution"
	"github.com/rawblock/mev-negotiator-core/internal/eventsink"
	"github.com/rawblock/mev-negotiator-core/internal/scoutregistry"
)

// status is the per-bundle state-machine position (spec §4.C6):
// Pending -> Revealed -> Committed-in-Block | Rejected-this-round | Expired.
type status int

const (
	statusPending status = iota
	statusRevealed
)

type pendingEntry struct {
	bundle bundlemodel.SealedBundle
	status status
}

type revealedEntry struct {
	bundle bundlemodel.RevealedBundle
}

// Verifier checks a reveal's signature over its payloads. The default
// AcceptAnyNonEmpty treats a non-empty signature as valid, since the spec
// leaves the concrete signature scheme to the host (an Attestation-style
// opaque capability, per spec §6) — swap in a real verifier for production
// use.
type Verifier func(bundleID string, payloads [][]byte, signature []byte) bool

// AcceptAnyNonEmpty is the default Verifier: any non-empty signature passes.
func AcceptAnyNonEmpty(_ string, _ [][]byte, signature []byte) bool {
	return len(signature) > 0
}

// Config carries the Negotiator's tunables from spec §6.
type Config struct {
	MinReputation            float64
	BundleExpiration         time.Duration
	Conflict                 conflict.Config
	Coalition                coalition.Config
	Distribution             distribution.Config
	CharFunc                 coalition.CharFunc
}

// DefaultConfig matches spec §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		MinReputation:    0.5,
		BundleExpiration: 30 * time.Second,
		Conflict:         conflict.DefaultConfig(),
		Coalition:        coalition.DefaultConfig(),
		Distribution:     distribution.DefaultConfig(),
		CharFunc:         coalition.AdditiveValue,
	}
}

// NegotiationResult is the return value of Negotiate (spec §4.C6).
type NegotiationResult struct {
	Success              bool
	OptimalCoalition     bundlemodel.Coalition
	Distribution         distribution.ProfitDistribution
	RejectedBundleIDs    []string
	CoalitionsConsidered int
	ExecTimeMs           float64
}

// Orchestrator drives the full negotiation lifecycle. It owns the pending
// and revealed pools exclusively (spec §3 "Ownership"); the Scout Registry
// is shared by reference.
type Orchestrator struct {
	mu       sync.Mutex
	registry *scoutregistry.Registry
	sink     eventsink.Sink
	cfg      Config
	verify   Verifier
	now      func() time.Time

	pending  map[string]*pendingEntry
	revealed map[string]*revealedEntry
}

// New builds an Orchestrator wired to the given Scout Registry and sink. A
// nil sink defaults to eventsink.Null; a nil Verifier defaults to
// AcceptAnyNonEmpty.
func New(registry *scoutregistry.Registry, sink eventsink.Sink, cfg Config, verify Verifier) *Orchestrator {
	if sink == nil {
		sink = eventsink.Null
	}
	if verify == nil {
		verify = AcceptAnyNonEmpty
	}
	return &Orchestrator{
		registry: registry,
		sink:     sink,
		cfg:      cfg,
		verify:   verify,
		now:      time.Now,
		pending:  make(map[string]*pendingEntry),
		revealed: make(map[string]*revealedEntry),
	}
}

// AcceptSealed implements accept_sealed (spec §4.C6): returns true iff the
// scout exists, is active, meets min_reputation, the bundle is not already
// expired, not malformed, and its bundle_id is not a duplicate of any
// pending or revealed bundle. On success the bundle is stored in the
// pending pool and a bundle_sealed_accepted event is emitted.
func (o *Orchestrator) AcceptSealed(b bundlemodel.SealedBundle) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	scout, ok := o.registry.Get(b.ScoutID)
	if !ok || !scout.Active || scout.Reputation < o.cfg.MinReputation {
		return false
	}
	if !b.Valid() {
		return false
	}
	now := o.now()
	if !b.ExpiresAt.After(now) {
		return false
	}
	if _, dup := o.pending[b.BundleID]; dup {
		return false
	}
	if _, dup := o.revealed[b.BundleID]; dup {
		return false
	}

	o.pending[b.BundleID] = &pendingEntry{bundle: b, status: statusPending}

	o.sink.Emit(eventsink.Event{
		Kind: eventsink.KindBundleSealedAccepted,
		Payload: eventsink.BundleSealedAccepted{
			BundleID:        b.BundleID,
			ScoutID:         b.ScoutID,
			Kind:            string(b.Kind),
			PromisedValue:   b.PromisedValue,
			CreatedAtUnixMs: b.CreatedAt.UnixMilli(),
			ExpiresAtUnixMs: b.ExpiresAt.UnixMilli(),
		},
	})
	return true
}

// Reveal implements reveal (spec §4.C6). On success the bundle moves from
// the pending pool to the revealed pool and a bundle_revealed event is
// emitted.
func (o *Orchestrator) Reveal(bundleID string, payloads [][]byte, signature []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	entry, ok := o.pending[bundleID]
	if !ok || entry.status != statusPending {
		return ErrNotPending
	}
	if !bundlemodel.VerifyCommit(entry.bundle.CommitHash, payloads) {
		return ErrFingerprintMismatch
	}
	if !o.verify(bundleID, payloads, signature) {
		return ErrSignatureInvalid
	}

	delete(o.pending, bundleID)
	o.revealed[bundleID] = &revealedEntry{bundle: bundlemodel.RevealedBundle{
		SealedBundle: entry.bundle,
		TxPayloads:   payloads,
		Signature:    signature,
		Revealed:     true,
	}}

	o.sink.Emit(eventsink.Event{
		Kind: eventsink.KindBundleRevealed,
		Payload: eventsink.BundleRevealed{
			BundleID: bundleID,
			ScoutID:  entry.bundle.ScoutID,
		},
	})
	return nil
}

// RevealWithArbitrage is Reveal plus an attached ArbitrageOpportunity, used
// by callers that already have the structured footprint the Conflict
// Detector needs (spec §3 RevealedBundle.arbitrage_opportunity).
func (o *Orchestrator) RevealWithArbitrage(bundleID string, payloads [][]byte, signature []byte, arb *bundlemodel.ArbitrageOpportunity) error {
	if err := o.Reveal(bundleID, payloads, signature); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if entry, ok := o.revealed[bundleID]; ok {
		entry.bundle.Arbitrage = arb
	}
	return nil
}

// ExpireTick implements expire_tick (spec §4.C6): removes pending bundles
// with expires_at <= now, emitting a bundle_expired event for each.
func (o *Orchestrator) ExpireTick(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for id, entry := range o.pending {
		if !entry.bundle.ExpiresAt.After(now) {
			delete(o.pending, id)
			o.sink.Emit(eventsink.Event{
				Kind: eventsink.KindBundleExpired,
				Payload: eventsink.BundleExpired{
					BundleID: id,
					Reason:   "expires_at reached",
				},
			})
		}
	}
}

// Negotiate implements negotiate (spec §4.C6): runs the Conflict Detector,
// Coalition Engine and Profit Distributor over a consistent snapshot of the
// revealed pool (spec §5's "single critical section"), and on success
// consumes the revealed bundles used.
func (o *Orchestrator) Negotiate() NegotiationResult {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := o.now()

	n := len(o.revealed)
	if n == 0 {
		return NegotiationResult{Success: false, ExecTimeMs: msSince(start, o.now())}
	}

	snapshot := make([]bundlemodel.RevealedBundle, 0, n)
	for _, entry := range o.revealed {
		snapshot = append(snapshot, entry.bundle)
	}

	if o.cfg.Coalition.MaxBundlesPerBlock > 0 && n > o.cfg.Coalition.MaxBundlesPerBlock {
		// spec §9: max_bundles_per_block MUST be enforced before
		// enumeration. Keep the highest promised_value bundles and treat
		// the rest as rejected-this-round (they remain revealed and may be
		// picked up by a later round).
		snapshot = topByValue(snapshot, o.cfg.Coalition.MaxBundlesPerBlock)
	}

	conflicts := conflict.ClassifyAll(snapshot, o.cfg.Conflict)

	charFunc := o.cfg.CharFunc
	if charFunc == nil {
		charFunc = coalition.AdditiveValue
	}
	result := coalition.Enumerate(snapshot, conflicts, o.cfg.Coalition, charFunc)

	if len(result.Optimal.Bundles) == 0 {
		return NegotiationResult{
			Success:              false,
			CoalitionsConsidered: result.CoalitionsConsidered,
			ExecTimeMs:           msSince(start, o.now()),
		}
	}

	dist, err := distribution.Distribute(result.Optimal, o.cfg.Distribution)
	if err != nil {
		return NegotiationResult{
			Success:              false,
			CoalitionsConsidered: result.CoalitionsConsidered,
			ExecTimeMs:           msSince(start, o.now()),
		}
	}

	winners := make(map[string]struct{}, len(result.Optimal.Bundles))
	for _, b := range result.Optimal.Bundles {
		winners[b.BundleID] = struct{}{}
		delete(o.revealed, b.BundleID)
	}
	var rejected []string
	for id := range o.revealed {
		rejected = append(rejected, id)
	}

	execMs := msSince(start, o.now())

	o.sink.Emit(eventsink.Event{
		Kind: eventsink.KindNegotiationCompleted,
		Payload: eventsink.NegotiationCompleted{
			CoalitionMembers:  result.Optimal.BundleIDs(),
			TotalValue:        result.Optimal.Value,
			ShapleyMap:        result.Optimal.MarginalContributions,
			RejectedBundleIDs: rejected,
			ExecTimeMs:        execMs,
		},
	})

	return NegotiationResult{
		Success:              true,
		OptimalCoalition:     result.Optimal,
		Distribution:         dist,
		RejectedBundleIDs:    rejected,
		CoalitionsConsidered: result.CoalitionsConsidered,
		ExecTimeMs:           execMs,
	}
}

// PendingCount and RevealedCount support introspection/health endpoints
// (spec §12 SUPPLEMENTED FEATURES capabilities probe).
func (o *Orchestrator) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

func (o *Orchestrator) RevealedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.revealed)
}

func msSince(start, end time.Time) float64 {
	return float64(end.Sub(start).Microseconds()) / 1000.0
}

// topByValue keeps the cap highest-promised_value bundles, breaking ties by
// (created_at, bundle_id) per bundlemodel.SealedBundle.Less.
func topByValue(bundles []bundlemodel.RevealedBundle, cap int) []bundlemodel.RevealedBundle {
	out := make([]bundlemodel.RevealedBundle, len(bundles))
	copy(out, bundles)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			if betterKept(out[j], out[j-1]) {
				out[j], out[j-1] = out[j-1], out[j]
			} else {
				break
			}
		}
	}
	if len(out) > cap {
		out = out[:cap]
	}
	return out
}

func betterKept(a, b bundlemodel.RevealedBundle) bool {
	if a.PromisedValue != b.PromisedValue {
		return a.PromisedValue > b.PromisedValue
	}
	return a.SealedBundle.Less(b.SealedBundle)
}
