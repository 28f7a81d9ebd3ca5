// Package sparring implements the Adversarial Sparring gate (spec §4.C7):
// for any bundle about to execute whose profit fraction clears
// profit_threshold, an external "break-this-bundle" analysis is obtained
// from an OracleChallenger port and a deadline-bounded counter-response is
// required before the bundle proceeds.
package sparring

import "errors"

// Severity mirrors the attack-vector/vulnerability severity scale used
// throughout spec §3/§4.C7/§4.C8.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Recommendation is the Challenge's overall verdict (spec §3).
type Recommendation string

const (
	RecommendProceed Recommendation = "proceed"
	RecommendAbort   Recommendation = "abort"
	RecommendModify  Recommendation = "modify"
)

// Decision is the Counter's outcome (spec §3/§4.C7).
type Decision string

const (
	DecisionProceed Decision = "proceed"
	DecisionRetry   Decision = "retry"
	DecisionAbort   Decision = "abort"
)

// AttackVector is one adversarial angle the challenger surfaced.
type AttackVector struct {
	Kind           string   `json:"kind"`
	Severity       Severity `json:"severity"`
	Probability    float64  `json:"probability"`
	EstimatedLoss  int64    `json:"estimated_loss"`
	CounterMeasure string   `json:"counter_measure,omitempty"`
}

// Vulnerability is one weakness the challenger identified.
type Vulnerability struct {
	Category      string  `json:"category"`
	Exploitability float64 `json:"exploitability"`
	Impact        float64 `json:"impact"`
}

// Challenge is the record of one adversarial analysis round (spec §3).
type Challenge struct {
	ChallengeID    string          `json:"challenge_id"`
	BundleID       string          `json:"bundle_id"`
	IssuedAtUnixMs int64           `json:"issued_at_unix_ms"`
	Prompt         string          `json:"prompt"`
	AttackVectors  []AttackVector  `json:"attack_vectors"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
	OverallScore   float64         `json:"overall_score"`
	Recommendation Recommendation  `json:"recommendation"`
}

// AppliedCounterMeasure is one applied response to an attack vector.
type AppliedCounterMeasure struct {
	AttackVectorKind string  `json:"attack_vector_kind"`
	Method           string  `json:"method"`
	Effectiveness    float64 `json:"effectiveness"`
	Applied          bool    `json:"applied"`
}

// Counter is the response to a Challenge (spec §3).
type Counter struct {
	CounterID       string                  `json:"counter_id"`
	ChallengeID     string                  `json:"challenge_id"`
	ResponseTimeMs  int64                   `json:"response_time_ms"`
	WithinDeadline  bool                    `json:"within_deadline"`
	CounterMeasures []AppliedCounterMeasure `json:"counter_measures"`
	ModifiedBundleID string                 `json:"modified_bundle_id,omitempty"`
	Decision        Decision                `json:"decision"`
	Confidence      float64                 `json:"confidence"`
}

// BundleView is the read-only projection of a bundle the challenger is
// given; it never exposes the orchestrator's internal pool state (spec §3
// ownership rules keep SealedBundle/RevealedBundle exclusive to the
// Negotiator).
type BundleView struct {
	BundleID       string
	Kind           string
	PromisedValue  int64
	GasEstimate    int64
	TxCount        int
	ProfitFraction float64
	MEVRisk        float64
	SlippageRisk   float64
}

// Errors returned synchronously by challenge/process_counter (spec §4.C7).
var (
	ErrBelowThreshold    = errors.New("sparring: bundle profit_fraction below profit_threshold")
	ErrTooManyConcurrent = errors.New("sparring: too many concurrent challenges")
	ErrChallengerUnavailable = errors.New("sparring: challenger unavailable")
	ErrUnknownChallenge  = errors.New("sparring: unknown challenge_id")
)
