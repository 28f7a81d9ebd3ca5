package scoutregistry

import (
	"testing"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

func TestUpdateReputation_ClampsToUnitInterval(t *testing.T) {
	r := New()
	r.Register(bundlemodel.Scout{ScoutID: "s1", Reputation: 0.9})

	r.UpdateReputation("s1", 0.5, 1)
	scout, _ := r.Get("s1")
	if scout.Reputation != 1 {
		t.Fatalf("expected reputation clamped to 1, got %v", scout.Reputation)
	}

	r.UpdateReputation("s1", -5, 2)
	scout, _ = r.Get("s1")
	if scout.Reputation != 0 {
		t.Fatalf("expected reputation clamped to 0, got %v", scout.Reputation)
	}
}

func TestUpdateReputation_IdempotentPerRound(t *testing.T) {
	r := New()
	r.Register(bundlemodel.Scout{ScoutID: "s1", Reputation: 0.5})

	r.UpdateReputation("s1", 0.1, 7)
	r.UpdateReputation("s1", 0.1, 7)
	scout, _ := r.Get("s1")
	if scout.Reputation != 0.6 {
		t.Fatalf("expected delta applied once for round 7, got %v", scout.Reputation)
	}

	r.UpdateReputation("s1", 0.1, 8)
	scout, _ = r.Get("s1")
	if scout.Reputation != 0.7 {
		t.Fatalf("expected a new round to apply the delta again, got %v", scout.Reputation)
	}
}

func TestUpdateReputation_UnknownScoutReturnsFalse(t *testing.T) {
	r := New()
	if r.UpdateReputation("ghost", 0.1, 1) {
		t.Fatal("expected update on unknown scout to return false")
	}
}

func TestIterActive_FiltersOutInactiveScouts(t *testing.T) {
	r := New()
	r.Register(bundlemodel.Scout{ScoutID: "s1"})
	r.Register(bundlemodel.Scout{ScoutID: "s2"})
	r.SetActive("s2", false)

	active := r.IterActive()
	if len(active) != 1 || active[0].ScoutID != "s1" {
		t.Fatalf("expected only s1 to be active, got %+v", active)
	}
}

func TestRegister_IsANoOpForAnExistingScoutID(t *testing.T) {
	r := New()
	r.Register(bundlemodel.Scout{ScoutID: "s1", Reputation: 0.5})
	r.Register(bundlemodel.Scout{ScoutID: "s1", Reputation: 0.9})

	scout, _ := r.Get("s1")
	if scout.Reputation != 0.5 {
		t.Fatalf("expected second Register call to no-op, got reputation %v", scout.Reputation)
	}
}

func TestRecordSubmission_UpdatesRollingAverage(t *testing.T) {
	r := New()
	r.Register(bundlemodel.Scout{ScoutID: "s1"})

	r.RecordSubmission("s1", 100, true)
	r.RecordSubmission("s1", 200, false)

	scout, _ := r.Get("s1")
	if scout.Submitted != 2 {
		t.Fatalf("expected submitted=2, got %d", scout.Submitted)
	}
	if scout.Successful != 1 {
		t.Fatalf("expected successful=1, got %d", scout.Successful)
	}
	if scout.AvgValue != 150 {
		t.Fatalf("expected avg_value=150, got %v", scout.AvgValue)
	}
}
