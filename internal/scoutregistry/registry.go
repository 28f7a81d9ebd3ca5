// Package scoutregistry tracks known scouts, their reputation and liveness.
// Readers take the registry's RWMutex in read mode and then the scout's own
// mutex, so reads are not lock-free; writes to a given scout's reputation
// serialize through that scout's own mutex, grounded in
// the teacher's InvestigationManager (internal/heuristics/investigation.go)
// — a sync.RWMutex-guarded map of owned records with per-record mutation
// methods.
package scoutregistry

import (
	"sync"
	"time"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

// record wraps a Scout with the per-scout write lock and idempotence marker
// spec §4.C2 requires ("updates are idempotent per negotiation round").
type record struct {
	mu            sync.Mutex
	scout         bundlemodel.Scout
	lastRoundSeen int64
}

// Registry is the Scout Registry component (spec §4.C2).
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record
}

// New creates an empty scout registry.
func New() *Registry {
	return &Registry{records: make(map[string]*record)}
}

// Register adds a new scout, or no-ops if one with this ScoutID already
// exists (scouts are "created on first registration... never destroyed").
func (r *Registry) Register(s bundlemodel.Scout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[s.ScoutID]; ok {
		return
	}
	if s.LastSeen.IsZero() {
		s.LastSeen = time.Now()
	}
	s.Active = true
	r.records[s.ScoutID] = &record{scout: s}
}

// Get returns a copy of the scout's current state, and whether it exists.
func (r *Registry) Get(scoutID string) (bundlemodel.Scout, bool) {
	r.mu.RLock()
	rec, ok := r.records[scoutID]
	r.mu.RUnlock()
	if !ok {
		return bundlemodel.Scout{}, false
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.scout, true
}

// UpdateReputation applies delta to the scout's reputation, clamped to
// [0,1], and is idempotent for a given round: calling it twice with the same
// round number for the same scout only applies the delta once.
func (r *Registry) UpdateReputation(scoutID string, delta float64, round int64) bool {
	r.mu.RLock()
	rec, ok := r.records[scoutID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if round != 0 && rec.lastRoundSeen == round {
		return true
	}
	rec.scout.Reputation = clamp01(rec.scout.Reputation + delta)
	rec.scout.LastSeen = time.Now()
	rec.lastRoundSeen = round
	return true
}

// RecordSubmission updates rolling counters after a scout submits a bundle.
func (r *Registry) RecordSubmission(scoutID string, value int64, successful bool) {
	r.mu.RLock()
	rec, ok := r.records[scoutID]
	r.mu.RUnlock()
	if !ok {
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	n := rec.scout.Submitted
	rec.scout.AvgValue = (rec.scout.AvgValue*float64(n) + float64(value)) / float64(n+1)
	rec.scout.Submitted = n + 1
	if successful {
		rec.scout.Successful++
	}
	rec.scout.LastSeen = time.Now()
}

// SetActive flips the active flag without otherwise mutating the scout.
func (r *Registry) SetActive(scoutID string, active bool) bool {
	r.mu.RLock()
	rec, ok := r.records[scoutID]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	rec.mu.Lock()
	rec.scout.Active = active
	rec.mu.Unlock()
	return true
}

// IterActive returns a snapshot slice of all currently active scouts.
func (r *Registry) IterActive() []bundlemodel.Scout {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]bundlemodel.Scout, 0, len(r.records))
	for _, rec := range r.records {
		rec.mu.Lock()
		if rec.scout.Active {
			out = append(out, rec.scout)
		}
		rec.mu.Unlock()
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
