// Package fuzzer implements the Attack Fuzzer (spec §4.C8): a seeded,
// reproducible scenario generator that drives registered defense handlers
// concurrently in bounded batches and reports aggregate detection/
// mitigation/bypass statistics, independently of live negotiation.
package fuzzer

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/rawblock/mev-negotiator-core/internal/eventsink"
)

// Config carries the fuzzer's tunables from spec §6.
type Config struct {
	ScenariosPerRun   int
	MaxConcurrent     int
	ScenarioTimeoutMs int64
	RandomSeed        int64
	EnableAllAttacks  bool
	FocusAttacks      []AttackKind
	SeverityFilter    []Severity // empty means all
}

// DefaultConfig matches spec §6's documented defaults. RandomSeed has no
// meaningful zero-value default under spec §9's reproducibility
// requirement ("random_seed (default current time)") — callers that want
// reproducible runs must set it explicitly; DefaultConfig here leaves it 0,
// which is itself a perfectly reproducible seed, just not a fresh one.
func DefaultConfig() Config {
	return Config{
		ScenariosPerRun:   100,
		MaxConcurrent:     10,
		ScenarioTimeoutMs: 5000,
		EnableAllAttacks:  true,
	}
}

// Fuzzer drives the Attack Fuzzer's scenario generation and defense-handler
// dispatch loop.
type Fuzzer struct {
	mu       sync.RWMutex
	cfg      Config
	handlers map[AttackKind]DefenseHandler
	sink     eventsink.Sink
	logger   *log.Logger
}

// New builds a Fuzzer. A nil sink defaults to eventsink.Null.
func New(cfg Config, sink eventsink.Sink) *Fuzzer {
	if sink == nil {
		sink = eventsink.Null
	}
	return &Fuzzer{
		cfg:      cfg,
		handlers: make(map[AttackKind]DefenseHandler),
		sink:     sink,
		logger:   log.New(os.Stderr, "[fuzzer] ", log.LstdFlags),
	}
}

// RegisterDefense implements register_defense (spec §4.C8).
func (f *Fuzzer) RegisterDefense(kind AttackKind, handler DefenseHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[kind] = handler
}

// kindPopulation resolves which attack kinds this run draws from.
func (f *Fuzzer) kindPopulation() []AttackKind {
	if len(f.cfg.FocusAttacks) > 0 {
		return f.cfg.FocusAttacks
	}
	if f.cfg.EnableAllAttacks {
		return AllKinds
	}
	return AllKinds
}

func severityAllowed(filter []Severity, sev Severity) bool {
	if len(filter) == 0 {
		return true
	}
	for _, s := range filter {
		if s == sev {
			return true
		}
	}
	return false
}

// Run implements run() (spec §4.C8): generates scenarios_per_run scenarios
// from the seeded LCG, filters by the severity whitelist, dispatches in
// batches of max_concurrent, emits fuzz_progress after each batch, and
// returns the aggregate FuzzerStats.
func (f *Fuzzer) Run() FuzzerStats {
	rng := newLCG(f.cfg.RandomSeed)
	kinds := f.kindPopulation()

	var scenarios []AttackScenario
	for i := 0; i < f.cfg.ScenariosPerRun; i++ {
		kind := kinds[rng.intn(len(kinds))]
		scenario := generateScenario(scenarioID(f.cfg.RandomSeed, i), kind, rng)
		if !severityAllowed(f.cfg.SeverityFilter, scenario.Severity) {
			continue
		}
		scenarios = append(scenarios, scenario)
	}

	stats := FuzzerStats{
		ByKind: make(map[AttackKind]*KindStats),
	}

	batchSize := f.cfg.MaxConcurrent
	if batchSize <= 0 {
		batchSize = 1
	}

	var totalDetectionMs int64
	var detectionSamples int

	for start := 0; start < len(scenarios); start += batchSize {
		end := start + batchSize
		if end > len(scenarios) {
			end = len(scenarios)
		}
		batch := scenarios[start:end]

		results := make([]FuzzResult, len(batch))
		var wg sync.WaitGroup
		for i, scenario := range batch {
			wg.Add(1)
			go func(i int, scenario AttackScenario) {
				defer wg.Done()
				results[i] = f.runOne(scenario)
			}(i, scenario)
		}
		wg.Wait()

		for i, r := range results {
			stats.Results = append(stats.Results, r)
			stats.TotalScenarios++
			if r.VulnerabilityFound {
				stats.Vulnerabilities++
			}
			stats.TotalDamageAvoided += r.DamageAvoided
			if r.DetectionTimeMs > 0 {
				totalDetectionMs += r.DetectionTimeMs
				detectionSamples++
			}

			kind := batch[i].AttackKind
			ks, ok := stats.ByKind[kind]
			if !ok {
				ks = &KindStats{}
				stats.ByKind[kind] = ks
			}
			ks.Total++
			switch r.Outcome {
			case OutcomeDetected:
				ks.Detected++
			case OutcomeMitigated:
				ks.Mitigated++
			case OutcomePartial:
				ks.Partial++
			case OutcomeBypassed:
				ks.Bypassed++
			}
			if r.VulnerabilityFound {
				ks.Vulnerabilities++
			}
		}

		f.sink.Emit(eventsink.Event{
			Kind: eventsink.KindFuzzProgress,
			Payload: eventsink.FuzzProgress{
				Completed:            len(stats.Results),
				Total:                len(scenarios),
				VulnerabilitiesSoFar: stats.Vulnerabilities,
			},
		})
	}

	if detectionSamples > 0 {
		stats.AverageDetectionTimeMs = float64(totalDetectionMs) / float64(detectionSamples)
	}

	f.sink.Emit(eventsink.Event{
		Kind:    eventsink.KindFuzzCompleted,
		Payload: eventsink.FuzzCompleted{Stats: stats},
	})

	return stats
}

// scenarioID derives a scenario_id deterministically from the run's seed and
// the scenario's position in generation order, rather than a random uuid, so
// that two Run() calls with the same random_seed produce byte-identical
// FuzzResult lists (spec §8 reproducibility).
func scenarioID(seed int64, index int) string {
	return fmt.Sprintf("scn_%d_%d", seed, index)
}

// runOne dispatches a single scenario to its registered handler, bounding
// the call by scenario_timeout_ms. A missing handler is an automatic
// bypass with a vulnerability flagged (spec §4.C8 register_defense).
func (f *Fuzzer) runOne(scenario AttackScenario) FuzzResult {
	f.mu.RLock()
	handler, ok := f.handlers[scenario.AttackKind]
	f.mu.RUnlock()

	if !ok {
		return FuzzResult{
			ScenarioID:         scenario.ScenarioID,
			Outcome:            OutcomeBypassed,
			VulnerabilityFound: true,
			Detail:             "no defense handler registered for " + string(scenario.AttackKind),
		}
	}

	result := make(chan HandlerResult, 1)
	go func() {
		result <- handler(scenario)
	}()

	timeout := time.Duration(f.cfg.ScenarioTimeoutMs) * time.Millisecond
	select {
	case hr := <-result:
		return classifyOutcome(scenario, hr, false)
	case <-time.After(timeout):
		f.logger.Printf("scenario %s (%s) exceeded %s timeout", scenario.ScenarioID, scenario.AttackKind, timeout)
		return classifyOutcome(scenario, HandlerResult{}, true)
	}
}
