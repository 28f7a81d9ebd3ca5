package sparring

import (
	"testing"
	"time"
)

type fakeClock struct{ ms int64 }

func (f *fakeClock) NowMs() int64 { return f.ms }

func TestShouldChallenge_ThresholdBoundary(t *testing.T) {
	s := New(DefaultConfig(), SimulatedChallenger{}, nil, nil)
	if s.ShouldChallenge(BundleView{ProfitFraction: 0.69}) {
		t.Fatal("expected 0.69 to be below the 0.7 threshold")
	}
	if !s.ShouldChallenge(BundleView{ProfitFraction: 0.7}) {
		t.Fatal("expected 0.7 to clear the threshold")
	}
}

func TestChallenge_BelowThreshold(t *testing.T) {
	s := New(DefaultConfig(), SimulatedChallenger{}, nil, nil)
	_, err := s.Challenge("bnd_1", BundleView{ProfitFraction: 0.1})
	if err != ErrBelowThreshold {
		t.Fatalf("expected ErrBelowThreshold, got %v", err)
	}
}

func TestProcessCounter_DeadlineMiss(t *testing.T) {
	clock := &fakeClock{ms: 1000}
	cfg := DefaultConfig()
	s := New(cfg, SimulatedChallenger{}, clock, nil)

	ch, err := s.Challenge("bnd_1", BundleView{ProfitFraction: 1.2, MEVRisk: 0.5})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}

	clock.ms = 1500 // 500ms later, deadline is 400ms
	counter, err := s.ProcessCounter(ch.ChallengeID, []AppliedCounterMeasure{
		{Effectiveness: 0.9}, {Effectiveness: 0.9},
	}, "")
	if err != nil {
		t.Fatalf("process_counter: %v", err)
	}
	if counter.WithinDeadline {
		t.Fatal("expected within_deadline=false at 500ms against a 400ms deadline")
	}
	if counter.Decision != DecisionAbort {
		t.Fatalf("expected decision=abort on deadline miss, got %v", counter.Decision)
	}
}

func TestProcessCounter_ProceedsOnHighCounterRateAndScore(t *testing.T) {
	clock := &fakeClock{ms: 0}
	s := New(DefaultConfig(), SimulatedChallenger{}, clock, nil)

	// Three vectors (sandwich, frontrun, backrun); risk 0.16+0.06+0.05=0.27,
	// so overall_score is 73.
	ch, err := s.Challenge("bnd_1", BundleView{Kind: "arbitrage", ProfitFraction: 1.0, MEVRisk: 0.4, SlippageRisk: 0.3})
	if err != nil {
		t.Fatalf("challenge: %v", err)
	}
	clock.ms = 250

	counters := make([]AppliedCounterMeasure, len(ch.AttackVectors))
	for i := range counters {
		counters[i] = AppliedCounterMeasure{Effectiveness: 0.9}
	}
	counter, err := s.ProcessCounter(ch.ChallengeID, counters, "")
	if err != nil {
		t.Fatalf("process_counter: %v", err)
	}
	if !counter.WithinDeadline {
		t.Fatal("expected within_deadline=true at 250ms")
	}
	if counter.Decision != DecisionProceed {
		t.Fatalf("expected decision=proceed with counter-rate 1.0 and score %v, got %v", ch.OverallScore, counter.Decision)
	}
}

func TestProcessCounter_UnknownChallenge(t *testing.T) {
	s := New(DefaultConfig(), SimulatedChallenger{}, nil, nil)
	_, err := s.ProcessCounter("chl_does_not_exist", nil, "")
	if err != ErrUnknownChallenge {
		t.Fatalf("expected ErrUnknownChallenge, got %v", err)
	}
}

func TestConcurrencyGate_RejectsOverCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentChallenges = 1
	s := New(cfg, SimulatedChallenger{}, nil, nil)

	view := BundleView{ProfitFraction: 1.0, MEVRisk: 0.5}
	if _, err := s.Challenge("bnd_1", view); err != nil {
		t.Fatalf("first challenge: %v", err)
	}
	if _, err := s.Challenge("bnd_2", view); err != ErrTooManyConcurrent {
		t.Fatalf("expected ErrTooManyConcurrent, got %v", err)
	}
}

func TestChallenge_DeadlineExpiryReleasesGateWithoutProcessCounter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrentChallenges = 1
	cfg.DeadlineMs = 10
	s := New(cfg, SimulatedChallenger{}, nil, nil)

	view := BundleView{ProfitFraction: 1.0, MEVRisk: 0.5}
	if _, err := s.Challenge("bnd_1", view); err != nil {
		t.Fatalf("first challenge: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if n := s.ActiveCount(); n != 0 {
		t.Fatalf("expected the expired challenge to be cleared, got %d active", n)
	}
	if _, err := s.Challenge("bnd_2", view); err != nil {
		t.Fatalf("expected the gate slot to be free after deadline expiry, got %v", err)
	}
}
