// Command coreharness is a demo host process for the negotiation core: it
// wires an in-process EventSink, a Scout Registry seeded with a couple of
// demo scouts, the Negotiator Orchestrator, the Adversarial Sparring gate
// (backed by the deterministic SimulatedChallenger), and the Attack Fuzzer
// with a handful of example defense handlers, then runs one negotiation
// round and one fuzzer pass end to end. It plays the same role here that
// cmd/engine/main.go plays for the teacher: the single process that wires
// every component together and prints its way through a run.
package main

import (
	"log"
	"os"
	"time"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
	"github.com/rawblock/mev-negotiator-core/internal/eventsink"
	"github.com/rawblock/mev-negotiator-core/internal/fuzzer"
	"github.com/rawblock/mev-negotiator-core/internal/negotiator"
	"github.com/rawblock/mev-negotiator-core/internal/scoutregistry"
	"github.com/rawblock/mev-negotiator-core/internal/sparring"
)

func main() {
	log.Println("Starting MEV Negotiator Core harness...")

	hub := eventsink.NewHub(64)
	defer hub.Close()
	unsubscribe := hub.Subscribe(func(e eventsink.Event) {
		log.Printf("[event] %s: %+v", e.Kind, e.Payload)
	})
	defer unsubscribe()

	registry := scoutregistry.New()
	seedDemoScouts(registry)

	orch := negotiator.New(registry, hub, negotiator.DefaultConfig(), nil)
	runNegotiationDemo(orch)

	spar := sparring.New(sparring.DefaultConfig(), sparring.SimulatedChallenger{}, nil, hub)
	runSparringDemo(spar)

	fuzzCfg := fuzzer.DefaultConfig()
	fuzzCfg.ScenariosPerRun = scenariosPerRunFromEnv(20)
	fuzzCfg.RandomSeed = int64(time.Now().UnixNano())
	fz := fuzzer.New(fuzzCfg, hub)
	registerDemoDefenses(fz)

	stats := fz.Run()
	log.Printf("fuzzer run complete: %d scenarios, %d vulnerabilities, avg detection %.1fms",
		stats.TotalScenarios, stats.Vulnerabilities, stats.AverageDetectionTimeMs)
}

func seedDemoScouts(registry *scoutregistry.Registry) {
	registry.Register(bundlemodel.Scout{
		ScoutID:    "scout-alpha",
		Reputation: 0.9,
		Active:     true,
	})
	registry.Register(bundlemodel.Scout{
		ScoutID:    "scout-beta",
		Reputation: 0.75,
		Active:     true,
	})
}

func runNegotiationDemo(orch *negotiator.Orchestrator) {
	now := time.Now()

	payloadsA := [][]byte{[]byte("arb-tx-1"), []byte("arb-tx-2")}
	bundleA := bundlemodel.SealedBundle{
		BundleID:      "bnd-alpha-1",
		ScoutID:       "scout-alpha",
		Kind:          bundlemodel.KindArbitrage,
		CommitHash:    bundlemodel.Fingerprint(payloadsA),
		PromisedValue: 100,
		CreatedAt:     now,
		ExpiresAt:     now.Add(30 * time.Second),
	}

	payloadsB := [][]byte{[]byte("liq-tx-1")}
	bundleB := bundlemodel.SealedBundle{
		BundleID:      "bnd-beta-1",
		ScoutID:       "scout-beta",
		Kind:          bundlemodel.KindLiquidation,
		CommitHash:    bundlemodel.Fingerprint(payloadsB),
		PromisedValue: 40,
		CreatedAt:     now,
		ExpiresAt:     now.Add(30 * time.Second),
	}

	if !orch.AcceptSealed(bundleA) {
		log.Println("warning: demo bundle A was rejected by accept_sealed")
	}
	if !orch.AcceptSealed(bundleB) {
		log.Println("warning: demo bundle B was rejected by accept_sealed")
	}

	if err := orch.Reveal(bundleA.BundleID, payloadsA, []byte("sig-alpha")); err != nil {
		log.Printf("warning: reveal A failed: %v", err)
	}
	if err := orch.Reveal(bundleB.BundleID, payloadsB, []byte("sig-beta")); err != nil {
		log.Printf("warning: reveal B failed: %v", err)
	}

	result := orch.Negotiate()
	log.Printf("negotiation result: success=%v value=%d coalitions_considered=%d exec_time_ms=%.3f",
		result.Success, result.OptimalCoalition.Value, result.CoalitionsConsidered, result.ExecTimeMs)
}

func runSparringDemo(spar *sparring.Sparring) {
	view := sparring.BundleView{
		BundleID:       "bnd-alpha-1",
		Kind:           "arbitrage",
		PromisedValue:  100,
		GasEstimate:    600000,
		TxCount:        3,
		ProfitFraction: 1.2,
		MEVRisk:        0.5,
		SlippageRisk:   0.3,
	}
	if !spar.ShouldChallenge(view) {
		log.Println("sparring: demo bundle did not clear profit_threshold")
		return
	}

	challenge, err := spar.Challenge(view.BundleID, view)
	if err != nil {
		log.Printf("sparring: challenge failed: %v", err)
		return
	}

	counter := spar.AutoCounter(challenge)
	log.Printf("sparring: decision=%s within_deadline=%v response_time_ms=%d",
		counter.Decision, counter.WithinDeadline, counter.ResponseTimeMs)
}

func registerDemoDefenses(fz *fuzzer.Fuzzer) {
	fz.RegisterDefense(fuzzer.AttackSandwich, func(s fuzzer.AttackScenario) fuzzer.HandlerResult {
		return fuzzer.HandlerResult{Detected: true, Mitigated: true, MitigationMethod: "private-mempool", ResponseTimeMs: 12}
	})
	fz.RegisterDefense(fuzzer.AttackFrontrun, func(s fuzzer.AttackScenario) fuzzer.HandlerResult {
		return fuzzer.HandlerResult{Detected: true, ResponseTimeMs: 18}
	})
	fz.RegisterDefense(fuzzer.AttackBackrun, func(s fuzzer.AttackScenario) fuzzer.HandlerResult {
		return fuzzer.HandlerResult{Detected: s.Parameters.TargetValue < 25, ResponseTimeMs: 9}
	})
	// No handler registered for the remaining kinds, demonstrating spec
	// §4.C8's automatic-bypass rule for unregistered attack kinds.
}

func scenariosPerRunFromEnv(fallback int) int {
	if val := os.Getenv("FUZZ_SCENARIOS_PER_RUN"); val != "" {
		n := 0
		for _, c := range val {
			if c < '0' || c > '9' {
				return fallback
			}
			n = n*10 + int(c-'0')
		}
		if n > 0 {
			return n
		}
	}
	return fallback
}
