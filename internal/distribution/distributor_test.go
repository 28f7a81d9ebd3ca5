package distribution

import (
	"testing"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

func makeCoalition(value int64, shapley map[string]float64, scoutIDs []string) bundlemodel.Coalition {
	bundles := make([]bundlemodel.RevealedBundle, len(scoutIDs))
	for i, id := range scoutIDs {
		bundles[i] = bundlemodel.RevealedBundle{SealedBundle: bundlemodel.SealedBundle{BundleID: id, ScoutID: id}}
	}
	return bundlemodel.Coalition{Bundles: bundles, Value: value, MarginalContributions: shapley}
}

func TestDistribute_Scenario1Numbers(t *testing.T) {
	coalition := makeCoalition(140, map[string]float64{"a": 100, "b": 40}, []string{"a", "b"})
	dist, err := Distribute(coalition, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist.TotalProfit != 140 {
		t.Fatalf("expected total_profit=140, got %d", dist.TotalProfit)
	}
	if dist.OperatorFee != 7 {
		t.Fatalf("expected operator_fee=140*0.05=7, got %v", dist.OperatorFee)
	}
}

func TestDistribute_ConservationHolds(t *testing.T) {
	coalition := makeCoalition(140, map[string]float64{"a": 100, "b": 40}, []string{"a", "b"})
	dist, err := Distribute(coalition, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var totalShares float64
	for _, s := range dist.Shares {
		if s.Total < 0 {
			t.Fatalf("expected no negative shares, got %+v", s)
		}
		totalShares += s.Total
	}
	if sum := totalShares + dist.OperatorFee; sum > float64(dist.TotalProfit)+1e-6 {
		t.Fatalf("expected sum(shares)+operator_fee <= total_profit, got %v > %d", sum, dist.TotalProfit)
	}
}

func TestDistribute_EqualSplitWhenShapleySumIsZero(t *testing.T) {
	coalition := makeCoalition(100, map[string]float64{"a": 0, "b": 0}, []string{"a", "b"})
	dist, err := Distribute(coalition, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dist.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(dist.Shares))
	}
	if dist.Shares[0].Base != dist.Shares[1].Base {
		t.Fatalf("expected equal-split fallback for zero shapley sum, got %+v", dist.Shares)
	}
}

func TestDistribute_RedistributionFavorsBelowAverageEarner(t *testing.T) {
	coalition := makeCoalition(100, map[string]float64{"a": 90, "b": 10}, []string{"a", "b"})
	dist, err := Distribute(coalition, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dist.Shares[1].Bonus <= 0 {
		t.Fatalf("expected the below-average earner to receive a redistribution bonus, got %+v", dist.Shares[1])
	}
	if dist.Shares[0].Bonus != 0 {
		t.Fatalf("expected the above-average earner to receive no bonus, got %+v", dist.Shares[0])
	}
}

func TestDistribute_UnimplementedMethodsReturnNotImplemented(t *testing.T) {
	coalition := makeCoalition(100, map[string]float64{"a": 100}, []string{"a"})
	cfg := Config{Method: MethodNucleolus}
	_, err := Distribute(coalition, cfg)
	if err != ErrNotImplemented {
		t.Fatalf("expected ErrNotImplemented for nucleolus, got %v", err)
	}
}
