package sparring

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
	"github.com/rawblock/mev-negotiator-core/internal/eventsink"
)

// Config carries the Sparring gate's tunables from spec §6.
type Config struct {
	ProfitThreshold       float64       // percent, default 0.7
	DeadlineMs            int64         // default 400
	MaxConcurrentChallenges int         // default 10
	ChallengeCallTimeout  time.Duration // bound on the OracleChallenger call itself; spec leaves this unnamed, 2s is a conservative default well above deadline_ms
}

// DefaultConfig matches spec §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		ProfitThreshold:         0.7,
		DeadlineMs:              400,
		MaxConcurrentChallenges: 10,
		ChallengeCallTimeout:    2 * time.Second,
	}
}

type activeChallenge struct {
	challenge  Challenge
	issuedAtMs int64
}

// Sparring implements the Adversarial Sparring gate (spec §4.C7).
type Sparring struct {
	mu         sync.Mutex
	cfg        Config
	challenger OracleChallenger
	clock      Clock
	sink       eventsink.Sink
	gate       *concurrencyGate
	active     map[string]*activeChallenge
	sessions   []Session
	rng        *rand.Rand
}

// New builds a Sparring gate. A nil challenger defaults to
// SimulatedChallenger; a nil clock defaults to SystemClock; a nil sink
// defaults to eventsink.Null.
func New(cfg Config, challenger OracleChallenger, clock Clock, sink eventsink.Sink) *Sparring {
	if challenger == nil {
		challenger = SimulatedChallenger{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if sink == nil {
		sink = eventsink.Null
	}
	return &Sparring{
		cfg:        cfg,
		challenger: challenger,
		clock:      clock,
		sink:       sink,
		gate:       newConcurrencyGate(cfg.MaxConcurrentChallenges),
		active:     make(map[string]*activeChallenge),
		rng:        rand.New(rand.NewSource(1)),
	}
}

// ShouldChallenge implements should_challenge (spec §4.C7).
func (s *Sparring) ShouldChallenge(view BundleView) bool {
	return view.ProfitFraction >= s.cfg.ProfitThreshold
}

// Challenge implements challenge (spec §4.C7). On the OracleChallenger call
// exceeding ChallengeCallTimeout (or returning an error), the response is
// treated as maximally-pessimistic: it is replaced by a single synthetic
// critical "timeout" vector with overall score 0 and recommendation abort.
func (s *Sparring) Challenge(bundleID string, view BundleView) (Challenge, error) {
	if !s.ShouldChallenge(view) {
		return Challenge{}, ErrBelowThreshold
	}
	if !s.gate.acquire() {
		return Challenge{}, ErrTooManyConcurrent
	}

	resp, timedOut := s.callWithTimeout(view)
	if timedOut {
		resp = pessimisticResponse()
	}

	issuedAtMs := s.clock.NowMs()
	challenge := Challenge{
		ChallengeID:     bundlemodel.NewChallengeID(),
		BundleID:        bundleID,
		IssuedAtUnixMs:  issuedAtMs,
		Prompt:          challengePrompt(view),
		AttackVectors:   resp.AttackVectors,
		Vulnerabilities: resp.Vulnerabilities,
		OverallScore:    resp.OverallScore,
		Recommendation:  resp.Recommendation,
	}

	s.mu.Lock()
	s.active[challenge.ChallengeID] = &activeChallenge{challenge: challenge, issuedAtMs: issuedAtMs}
	s.mu.Unlock()

	go s.expireOnDeadline(challenge.ChallengeID)

	s.sink.Emit(eventsink.Event{
		Kind: eventsink.KindChallengeIssued,
		Payload: eventsink.ChallengeIssued{
			ChallengeID:       challenge.ChallengeID,
			BundleID:          bundleID,
			AttackVectorCount: len(challenge.AttackVectors),
			OverallScore:      challenge.OverallScore,
			Recommendation:    string(challenge.Recommendation),
		},
	})

	return challenge, nil
}

// callWithTimeout runs the OracleChallenger call on its own goroutine and
// bounds it by cfg.ChallengeCallTimeout; a slow or hung challenger never
// blocks the caller past that bound (spec §4.C7 "must return in finite
// time").
func (s *Sparring) callWithTimeout(view BundleView) (resp ChallengeResponse, timedOut bool) {
	result := make(chan ChallengeResponse, 1)
	go func() {
		r, err := s.challenger.Challenge(challengePrompt(view), view)
		if err != nil {
			r = pessimisticResponse()
		}
		result <- r
	}()

	select {
	case r := <-result:
		return r, false
	case <-time.After(s.cfg.ChallengeCallTimeout):
		return ChallengeResponse{}, true
	}
}

func pessimisticResponse() ChallengeResponse {
	return ChallengeResponse{
		AttackVectors: []AttackVector{
			{Kind: "timeout", Severity: SeverityCritical, Probability: 1.0},
		},
		OverallScore:   0,
		Recommendation: RecommendAbort,
	}
}

func challengePrompt(view BundleView) string {
	return "break-this-bundle: " + view.BundleID
}

// expireOnDeadline enforces spec §4.C7's "on deadline expiry the pending
// challenge transitions to a pessimistic outcome (decision=abort)": if
// ProcessCounter hasn't already claimed this challenge by DeadlineMs after
// issuance, finalize it here so the concurrencyGate slot isn't held forever
// by a host that never responds.
func (s *Sparring) expireOnDeadline(challengeID string) {
	time.Sleep(time.Duration(s.cfg.DeadlineMs) * time.Millisecond)

	s.mu.Lock()
	entry, ok := s.active[challengeID]
	if ok {
		delete(s.active, challengeID)
	}
	s.mu.Unlock()
	if !ok {
		return // ProcessCounter already claimed it
	}
	s.gate.release()

	responseTimeMs := s.clock.NowMs() - entry.issuedAtMs
	counter := Counter{
		CounterID:      bundlemodel.NewCounterID(),
		ChallengeID:    challengeID,
		ResponseTimeMs: responseTimeMs,
		WithinDeadline: false,
		Decision:       DecisionAbort,
	}

	s.sink.Emit(eventsink.Event{
		Kind: eventsink.KindCounterProcessed,
		Payload: eventsink.CounterProcessed{
			CounterID:      counter.CounterID,
			ChallengeID:    challengeID,
			ResponseTimeMs: responseTimeMs,
			WithinDeadline: false,
			Decision:       string(DecisionAbort),
			Confidence:     0,
		},
	})

	s.recordSession(Session{Challenge: entry.challenge, Counter: counter})
}

// ProcessCounter implements process_counter (spec §4.C7).
func (s *Sparring) ProcessCounter(challengeID string, counters []AppliedCounterMeasure, modifiedBundleID string) (Counter, error) {
	s.mu.Lock()
	entry, ok := s.active[challengeID]
	if ok {
		delete(s.active, challengeID)
	}
	s.mu.Unlock()
	if !ok {
		return Counter{}, ErrUnknownChallenge
	}
	s.gate.release()

	responseTimeMs := s.clock.NowMs() - entry.issuedAtMs
	withinDeadline := responseTimeMs <= s.cfg.DeadlineMs

	vectorCount := len(entry.challenge.AttackVectors)
	denominator := vectorCount
	if denominator == 0 {
		denominator = 1
	}
	effectiveCount := 0
	var confidenceSum float64
	for _, c := range counters {
		confidenceSum += c.Effectiveness
		if c.Effectiveness >= 0.7 {
			effectiveCount++
		}
	}
	counterRate := float64(effectiveCount) / float64(denominator)

	var decision Decision
	switch {
	case !withinDeadline:
		decision = DecisionAbort
	case counterRate >= 0.8 && entry.challenge.OverallScore >= 50:
		decision = DecisionProceed
	case counterRate >= 0.5 || modifiedBundleID != "":
		decision = DecisionRetry
	default:
		decision = DecisionAbort
	}

	confidence := 0.0
	if len(counters) > 0 {
		confidence = confidenceSum / float64(len(counters))
	}

	counter := Counter{
		CounterID:        bundlemodel.NewCounterID(),
		ChallengeID:       challengeID,
		ResponseTimeMs:    responseTimeMs,
		WithinDeadline:    withinDeadline,
		CounterMeasures:   counters,
		ModifiedBundleID:  modifiedBundleID,
		Decision:          decision,
		Confidence:        confidence,
	}

	s.sink.Emit(eventsink.Event{
		Kind: eventsink.KindCounterProcessed,
		Payload: eventsink.CounterProcessed{
			CounterID:      counter.CounterID,
			ChallengeID:    challengeID,
			ResponseTimeMs: responseTimeMs,
			WithinDeadline: withinDeadline,
			Decision:       string(decision),
			Confidence:     confidence,
		},
	})

	s.recordSession(Session{Challenge: entry.challenge, Counter: counter})

	return counter, nil
}

// AutoCounter implements auto_counter (spec §4.C7): a test helper that
// generates a plausible counter for every attack vector in a challenge,
// with effectiveness uniformly drawn from [0.6, 0.95].
func (s *Sparring) AutoCounter(challenge Challenge) Counter {
	s.mu.Lock()
	counters := make([]AppliedCounterMeasure, len(challenge.AttackVectors))
	for i, v := range challenge.AttackVectors {
		eff := 0.6 + s.rng.Float64()*0.35
		counters[i] = AppliedCounterMeasure{
			AttackVectorKind: v.Kind,
			Method:           "auto-" + v.Kind,
			Effectiveness:    eff,
			Applied:          true,
		}
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond) // small internal delay, per spec §4.C7

	result, err := s.ProcessCounter(challenge.ChallengeID, counters, "")
	if err != nil {
		// Challenge already resolved/unknown to this gate instance: still
		// return a best-effort Counter value rather than propagating an
		// error from a test helper that spec documents as infallible.
		return Counter{ChallengeID: challenge.ChallengeID, CounterMeasures: counters}
	}
	return result
}

// ActiveCount reports the number of challenges currently in flight, for
// introspection/health endpoints.
func (s *Sparring) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}
