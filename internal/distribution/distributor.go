// Package distribution implements the Profit Distributor (spec §4.C5):
// operator-fee skim plus a Shapley-proportional base allocation with a
// Robin-Hood redistribution pass for smaller contributors. It is polymorphic
// over the allocation-method capability set described in spec §9 — modeled
// as a Distributor interface (a tagged-strategy object), the same shape the
// teacher uses for its pluggable solver lanes (dp_solver.go vs
// cpsat_solver.go: two interchangeable strategies behind one calling
// convention).
package distribution

import (
	"errors"

	"github.com/rawblock/mev-negotiator-core/internal/bundlemodel"
)

// Method is the allocation strategy tag (spec §3 ProfitDistribution.method).
type Method string

const (
	MethodShapley     Method = "shapley"
	MethodNucleolus   Method = "nucleolus"
	MethodCore        Method = "core"
	MethodProportional Method = "proportional"
	MethodEqual       Method = "equal"
	MethodRobinHood   Method = "robin-hood"
)

// ErrNotImplemented is the acceptable default for the optional extension
// points spec §9 calls out: "Only shapley and robin-hood are required for
// parity; the others are optional extension points with NotImplemented the
// acceptable default."
var ErrNotImplemented = errors.New("distribution: allocation method not implemented")

// ErrEmptyCoalition is returned when Distribute is asked to allocate a
// coalition with no member bundles (nothing to divide `remaining` by).
var ErrEmptyCoalition = errors.New("distribution: coalition has no bundles")

// Config carries the fee/redistribution parameters from spec §6.
type Config struct {
	OperatorFeeFraction   float64
	RedistributionFraction float64
	Method                Method
}

// DefaultConfig matches spec §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		OperatorFeeFraction:   0.05,
		RedistributionFraction: 0.5,
		Method:                MethodShapley,
	}
}

// ScoutShare is one scout's line item in a ProfitDistribution.
type ScoutShare struct {
	ScoutID       string  `json:"scout_id"`
	Contributed   int64   `json:"contributed"`
	Marginal      float64 `json:"marginal"`
	Shapley       float64 `json:"shapley"`
	Base          float64 `json:"base"`
	Bonus         float64 `json:"bonus"`
	Total         float64 `json:"total"`
	PayoutAddress string  `json:"payout_address"`
}

// ProfitDistribution is the full allocation result for a negotiated
// coalition (spec §3).
type ProfitDistribution struct {
	TotalProfit            int64        `json:"total_profit"`
	OperatorFee            float64      `json:"operator_fee"`
	Shares                 []ScoutShare `json:"shares"`
	RedistributionAmount   float64      `json:"redistribution_amount"`
	RedistributionFraction float64      `json:"redistribution_fraction"`
	Method                 Method       `json:"method"`
}

// Distribute dispatches to the configured allocation method.
func Distribute(coalition bundlemodel.Coalition, cfg Config) (ProfitDistribution, error) {
	switch cfg.Method {
	case MethodShapley, MethodRobinHood, "":
		return distributeShapleyRobinHood(coalition, cfg)
	case MethodNucleolus, MethodCore, MethodProportional, MethodEqual:
		return ProfitDistribution{}, ErrNotImplemented
	default:
		return ProfitDistribution{}, ErrNotImplemented
	}
}

// distributeShapleyRobinHood implements spec §4.C5 steps 1-5 exactly.
func distributeShapleyRobinHood(coalition bundlemodel.Coalition, cfg Config) (ProfitDistribution, error) {
	n := len(coalition.Bundles)
	if n == 0 {
		return ProfitDistribution{}, ErrEmptyCoalition
	}
	v := coalition.Value

	operatorFee := float64(v) * cfg.OperatorFeeFraction
	remaining := float64(v) - operatorFee

	shapleySum := 0.0
	for _, phi := range coalition.MarginalContributions {
		shapleySum += phi
	}

	shares := make([]ScoutShare, n)
	base := make([]float64, n)

	if shapleySum == 0 {
		// Fall back to equal split, as spec §4.C5 step 3 requires.
		equal := remaining / float64(n)
		for i := range coalition.Bundles {
			base[i] = equal
		}
	} else {
		for i, b := range coalition.Bundles {
			phi := coalition.MarginalContributions[b.ScoutID]
			base[i] = (phi / shapleySum) * remaining
		}
	}

	avg := remaining / float64(n)
	bonus := make([]float64, n)
	var redistribution float64
	for i := range coalition.Bundles {
		if base[i] < avg {
			bonus[i] = (avg - base[i]) * cfg.RedistributionFraction
			redistribution += bonus[i]
		}
	}

	// Normalization pass: base[i]+bonus[i] as written can sum to more than
	// `remaining` (every bonus is new money layered on top of a base that
	// already sums to remaining) — spec §4.C5 step 4's "Σ(base+bonus) +
	// operator_fee ≤ V; any excess is retained as operator fee" is enforced
	// here by scaling the *payout* (base+bonus together) down by a single
	// factor so it fits exactly within `remaining`, leaving operator_fee
	// untouched. Base/Bonus on each share still report the unscaled,
	// Shapley-proportional figures for transparency; Total is the actual
	// conserved payout. If redistribution is zero (no below-average
	// earners) no scaling is needed and total == remaining exactly, so any
	// float slack is, as documented, left in the operator fee.
	var rawTotal float64
	for i := range coalition.Bundles {
		rawTotal += base[i] + bonus[i]
	}
	scale := 1.0
	if rawTotal > remaining && rawTotal > 0 {
		scale = remaining / rawTotal
	}

	for i, b := range coalition.Bundles {
		phi := coalition.MarginalContributions[b.ScoutID]
		shares[i] = ScoutShare{
			ScoutID:     b.ScoutID,
			Contributed: b.PromisedValue,
			Marginal:    phi,
			Shapley:     phi,
			Base:        base[i],
			Bonus:       bonus[i],
			Total:       (base[i] + bonus[i]) * scale,
		}
	}

	method := cfg.Method
	if method == "" {
		method = MethodShapley
	}

	return ProfitDistribution{
		TotalProfit:            v,
		OperatorFee:            operatorFee,
		Shares:                 shares,
		RedistributionAmount:   redistribution,
		RedistributionFraction: cfg.RedistributionFraction,
		Method:                 method,
	}, nil
}
