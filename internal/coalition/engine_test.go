package coalition

import (
	"testing"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

func bundle(id string, value int64) bundlemodel.RevealedBundle {
	return bundlemodel.RevealedBundle{SealedBundle: bundlemodel.SealedBundle{BundleID: id, ScoutID: id, PromisedValue: value}}
}

func TestEnumerate_NoConflictsPicksAllBundles(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 100), bundle("b", 40)}
	result := Enumerate(bundles, nil, DefaultConfig(), AdditiveValue)

	if result.Optimal.Value != 140 {
		t.Fatalf("expected coalition value 140, got %d", result.Optimal.Value)
	}
	if len(result.Optimal.Bundles) != 2 {
		t.Fatalf("expected both bundles included, got %d", len(result.Optimal.Bundles))
	}
}

func TestEnumerate_ConflictExcludesLowerValueBundle(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 100), bundle("b", 40)}
	conflicts := []bundlemodel.Conflict{{A: "a", B: "b", Kind: bundlemodel.ConflictTokenOverlap, Severity: 1.0}}

	cfg := DefaultConfig()
	result := Enumerate(bundles, conflicts, cfg, AdditiveValue)

	if len(result.Optimal.Bundles) != 1 || result.Optimal.Bundles[0].BundleID != "a" {
		t.Fatalf("expected singleton coalition {a}, got %+v", result.Optimal.BundleIDs())
	}
}

func TestEnumerate_Optimality_BruteForceCrossCheck(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 30), bundle("b", 20), bundle("c", 25)}
	conflicts := []bundlemodel.Conflict{{A: "a", B: "b", Kind: bundlemodel.ConflictTokenOverlap, Severity: 1.0}}
	cfg := DefaultConfig()

	result := Enumerate(bundles, conflicts, cfg, AdditiveValue)

	// Independent sets: {a},{b},{c},{a,c},{b,c}. Best by value is {a,c}=55.
	if result.Optimal.Value != 55 {
		t.Fatalf("expected optimal value 55 ({a,c}), got %d", result.Optimal.Value)
	}
}

func TestShapley_Efficiency(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 30), bundle("b", 20), bundle("c", 25)}
	result := Enumerate(bundles, nil, DefaultConfig(), AdditiveValue)

	var sum float64
	for _, phi := range result.Optimal.MarginalContributions {
		sum += phi
	}
	if diff := sum - float64(result.Optimal.Value); diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("expected sum of shapley values to equal coalition value, got sum=%v value=%d", sum, result.Optimal.Value)
	}
}

func TestShapley_NullPlayerIsZero(t *testing.T) {
	zeroValue := func(subset []bundlemodel.RevealedBundle) int64 {
		var total int64
		for _, b := range subset {
			if b.BundleID != "null" {
				total += b.PromisedValue
			}
		}
		return total
	}
	bundles := []bundlemodel.RevealedBundle{bundle("a", 30), bundle("null", 0)}
	shapley := computeShapley(bundles, zeroValue)

	if shapley["null"] != 0 {
		t.Fatalf("expected null-contribution member to get shapley=0, got %v", shapley["null"])
	}
}

func TestShapley_Symmetry(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 30), bundle("b", 30)}
	shapley := computeShapley(bundles, AdditiveValue)

	if shapley["a"] != shapley["b"] {
		t.Fatalf("expected identical bundles to receive identical shapley values, got a=%v b=%v", shapley["a"], shapley["b"])
	}
}

func TestEnumerate_Singleton(t *testing.T) {
	bundles := []bundlemodel.RevealedBundle{bundle("a", 10)}
	result := Enumerate(bundles, nil, DefaultConfig(), AdditiveValue)
	if len(result.Optimal.Bundles) != 1 || result.Optimal.Value != 10 {
		t.Fatalf("expected trivial singleton coalition, got %+v", result.Optimal)
	}
}

func TestEnumerate_Empty(t *testing.T) {
	result := Enumerate(nil, nil, DefaultConfig(), AdditiveValue)
	if len(result.Optimal.Bundles) != 0 {
		t.Fatalf("expected empty result for n=0, got %+v", result.Optimal)
	}
}
