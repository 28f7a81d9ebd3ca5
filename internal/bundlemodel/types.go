// Package bundlemodel is the pure data model shared by every component of the
// negotiation core: scouts, sealed/revealed bundles, conflicts, coalitions and
// the negotiated block they produce. It has no behavior beyond construction,
// fingerprinting and ordering — see fingerprint.go and SealedBundle.Less.
package bundlemodel

import "time"

// BundleKind classifies the MEV strategy a bundle implements.
type BundleKind string

const (
	KindArbitrage  BundleKind = "arbitrage"
	KindLiquidation BundleKind = "liquidation"
	KindBackrun    BundleKind = "backrun"
	KindSandwich   BundleKind = "sandwich"
	KindFlashLoan  BundleKind = "flash-loan"
	KindMEVBoost   BundleKind = "mev-boost"
	KindCustom     BundleKind = "custom"
)

// ConflictKind enumerates the reasons two bundles cannot share a block.
type ConflictKind string

const (
	ConflictNone           ConflictKind = "none"
	ConflictTokenOverlap   ConflictKind = "token-overlap"
	ConflictPoolOverlap    ConflictKind = "pool-overlap"
	ConflictNonce          ConflictKind = "nonce-conflict"
	ConflictStateDependency ConflictKind = "state-dependency"
	ConflictGasWar         ConflictKind = "gas-war"
	ConflictTiming         ConflictKind = "timing"
)

// Scout is a stable identity for an external searcher agent. Scouts are
// created on first registration and never destroyed, only deactivated.
type Scout struct {
	ScoutID    string    `json:"scout_id"`
	PublicKey  []byte    `json:"public_key"`
	Reputation float64   `json:"reputation"` // clamped to [0,1]
	Submitted  int       `json:"submitted"`
	Successful int       `json:"successful"`
	AvgValue   float64   `json:"avg_value"`
	LastSeen   time.Time `json:"last_seen"`
	Active     bool      `json:"active"`
}

// ArbitrageOpportunity is the structured description of an arbitrage bundle's
// footprint, used by the Conflict Detector to check token/pool overlap.
type ArbitrageOpportunity struct {
	Tokens         []string `json:"tokens"`
	Pools          []string `json:"pools"`
	ExpectedProfit int64    `json:"expected_profit"`
}

// SealedBundle is a commit-only opportunity submitted by a scout. Invariants:
// ExpiresAt > CreatedAt, PromisedValue >= 0, CommitHash is stable once set.
type SealedBundle struct {
	BundleID      string     `json:"bundle_id"`
	ScoutID       string     `json:"scout_id"`
	Kind          BundleKind `json:"kind"`
	CommitHash    string     `json:"commit_hash"`
	PromisedValue int64      `json:"promised_value"`
	TxIDs         []string   `json:"tx_ids"`
	GasEstimate   int64      `json:"gas_estimate"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// Valid checks the SealedBundle invariants documented in spec §3.
func (b SealedBundle) Valid() bool {
	return b.ExpiresAt.After(b.CreatedAt) && b.PromisedValue >= 0 && b.CommitHash != ""
}

// RevealedBundle is a SealedBundle plus the opened payload. Invariant:
// fingerprint(TxPayloads) == CommitHash (verified by the caller on reveal).
type RevealedBundle struct {
	SealedBundle
	TxPayloads [][]byte              `json:"tx_payloads"`
	Signature  []byte                `json:"signature"`
	Revealed   bool                  `json:"revealed"`
	Arbitrage  *ArbitrageOpportunity `json:"arbitrage_opportunity,omitempty"`
}

// Less orders bundles by (created_at, bundle_id) as required by spec §4.C1.
func (b SealedBundle) Less(other SealedBundle) bool {
	if !b.CreatedAt.Equal(other.CreatedAt) {
		return b.CreatedAt.Before(other.CreatedAt)
	}
	return b.BundleID < other.BundleID
}

// Conflict is a symmetric, ordered-pair classification between two bundles.
type Conflict struct {
	A        string       `json:"a"`
	B        string       `json:"b"`
	Kind     ConflictKind `json:"kind"`
	Severity float64      `json:"severity"`
	Reason   string       `json:"reason"`
}

// Coalition is a set of simultaneously executable bundles and the cooperative
// allocation computed over them for the current negotiation round.
type Coalition struct {
	CoalitionID string                     `json:"coalition_id"`
	ScoutIDs    []string                   `json:"scout_ids"`
	Bundles     []RevealedBundle           `json:"bundles"`
	Value       int64                      `json:"value"`
	// MarginalContributions maps scout_id to its Shapley value: the average
	// marginal contribution across all |S|! orderings (spec §3/§4.C4). Stored
	// as float64 because a superadditive/synergistic characteristic function
	// need not produce integral allocations even when promised_value is an
	// integer amount.
	MarginalContributions map[string]float64 `json:"marginal_contributions"`
	Stable                bool               `json:"stable"`
}

// BundleIDs returns the coalition's member bundle ids in stored order.
func (c Coalition) BundleIDs() []string {
	ids := make([]string, len(c.Bundles))
	for i, b := range c.Bundles {
		ids[i] = b.BundleID
	}
	return ids
}

// NegotiatedBlock is the final artifact of a successful negotiation round.
type NegotiatedBlock struct {
	BlockID       string             `json:"block_id"`
	Coalition     Coalition          `json:"coalition"`
	TxList        []string           `json:"tx_list"`
	AggregateGas  int64              `json:"aggregate_gas"`
	ShapleyValues map[string]float64 `json:"shapley_values"`
	Timestamp     time.Time          `json:"timestamp"`
	Signature     []byte             `json:"signature,omitempty"`
}
