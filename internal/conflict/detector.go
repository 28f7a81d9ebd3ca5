// Package conflict implements the pairwise semantic Conflict Detector
// (spec §4.C3): a pure, deterministic classifier evaluated in a fixed rule
// order, first match wins.
package conflict

import (
	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

// Config carries the overlap-tolerance switches spec §6 exposes.
type Config struct {
	AllowTokenOverlap bool
	AllowPoolOverlap  bool
}

// DefaultConfig matches spec §6's documented defaults.
func DefaultConfig() Config {
	return Config{AllowTokenOverlap: false, AllowPoolOverlap: false}
}

// Classify evaluates the four ordered rules from spec §4.C3 against a pair
// of revealed bundles and returns the (symmetric) Conflict between them.
func Classify(a, b bundlemodel.RevealedBundle, cfg Config) bundlemodel.Conflict {
	lo, hi := orderPair(a.BundleID, b.BundleID)

	// Rule 1: any shared tx_id => state-dependency, severity 1.0.
	if sharedTxID(a.TxIDs, b.TxIDs) {
		return bundlemodel.Conflict{
			A: lo, B: hi,
			Kind:     bundlemodel.ConflictStateDependency,
			Severity: 1.0,
			Reason:   "bundles reference a common transaction id",
		}
	}

	// Rule 2: token overlap between arbitrage opportunities.
	if !cfg.AllowTokenOverlap && a.Arbitrage != nil && b.Arbitrage != nil {
		if n, minLen := setOverlap(a.Arbitrage.Tokens, b.Arbitrage.Tokens); n > 0 {
			return bundlemodel.Conflict{
				A: lo, B: hi,
				Kind:     bundlemodel.ConflictTokenOverlap,
				Severity: float64(n) / float64(minLen),
				Reason:   "overlapping token footprint in arbitrage opportunity",
			}
		}
	}

	// Rule 3: pool overlap between arbitrage opportunities.
	if !cfg.AllowPoolOverlap && a.Arbitrage != nil && b.Arbitrage != nil {
		if n, minLen := setOverlap(a.Arbitrage.Pools, b.Arbitrage.Pools); n > 0 {
			return bundlemodel.Conflict{
				A: lo, B: hi,
				Kind:     bundlemodel.ConflictPoolOverlap,
				Severity: float64(n) / float64(minLen),
				Reason:   "overlapping pool footprint in arbitrage opportunity",
			}
		}
	}

	return bundlemodel.Conflict{A: lo, B: hi, Kind: bundlemodel.ConflictNone, Severity: 0}
}

// ClassifyAll runs Classify pairwise over all unordered pairs of bundles.
// O(n^2 * k) where k is the average token/pool set size; trivial for
// n <= max_bundles_per_block (default 10, spec §4.C4's complexity budget).
func ClassifyAll(bundles []bundlemodel.RevealedBundle, cfg Config) []bundlemodel.Conflict {
	var out []bundlemodel.Conflict
	for i := 0; i < len(bundles); i++ {
		for j := i + 1; j < len(bundles); j++ {
			c := Classify(bundles[i], bundles[j], cfg)
			if c.Kind != bundlemodel.ConflictNone {
				out = append(out, c)
			}
		}
	}
	return out
}

func orderPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

func sharedTxID(a, b []string) bool {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// setOverlap returns the intersection size and the smaller set's length, so
// callers can compute |intersection| / min(|A|,|B|) as spec §4.C3 requires.
func setOverlap(a, b []string) (intersection int, minLen int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	seen := make(map[string]struct{})
	for _, v := range b {
		if _, ok := set[v]; ok {
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				intersection++
			}
		}
	}
	minLen = len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	return intersection, minLen
}
