package fuzzer

// Outcome is the post-scenario classification (spec §3/§4.C8).
type Outcome string

const (
	OutcomeDetected  Outcome = "detected"
	OutcomeMitigated Outcome = "mitigated"
	OutcomePartial   Outcome = "partial"
	OutcomeBypassed  Outcome = "bypassed"
)

// HandlerResult is what a registered DefenseHandler reports for one
// scenario (spec §4.C8 register_defense).
type HandlerResult struct {
	Detected         bool
	Mitigated        bool
	MitigationMethod string
	ResponseTimeMs   int64
}

// DefenseHandler is the capability a host registers per attack kind. It
// must itself be responsive within ScenarioTimeoutMs; the fuzzer enforces
// that bound externally (see fuzzer.go's runOne), so a handler does not
// need to implement its own timeout.
type DefenseHandler func(scenario AttackScenario) HandlerResult

// FuzzResult is the per-scenario outcome record (spec §3).
type FuzzResult struct {
	ScenarioID         string  `json:"scenario_id"`
	Outcome            Outcome `json:"outcome"`
	DetectionTimeMs    int64   `json:"detection_time_ms"`
	MitigationApplied  string  `json:"mitigation_applied,omitempty"`
	DamageEstimate     float64 `json:"damage_estimate"`
	DamageAvoided      float64 `json:"damage_avoided"`
	VulnerabilityFound bool    `json:"vulnerability_found"`
	Detail             string  `json:"detail"`
	Recommendations    string  `json:"recommendations,omitempty"`
}

// classifyOutcome implements spec §4.C8's outcome/vulnerability rules.
func classifyOutcome(scenario AttackScenario, hr HandlerResult, timedOut bool) FuzzResult {
	if timedOut {
		return FuzzResult{
			ScenarioID:         scenario.ScenarioID,
			Outcome:            OutcomeBypassed,
			VulnerabilityFound: true,
			Detail:             "defense timeout",
		}
	}

	var outcome Outcome
	switch {
	case hr.Detected && hr.Mitigated:
		outcome = OutcomeMitigated
	case hr.Detected:
		outcome = OutcomeDetected
	case hr.Mitigated:
		outcome = OutcomePartial
	default:
		outcome = OutcomeBypassed
	}

	vulnerable := outcome == OutcomeBypassed ||
		(outcome == OutcomeDetected && scenario.Severity == SeverityCritical)

	damageEstimate := scenario.Parameters.TargetValue
	damageAvoided := 0.0
	if hr.Mitigated {
		damageAvoided = damageEstimate
	}

	detail := "handled by registered defense for " + string(scenario.AttackKind)
	if outcome == OutcomeBypassed {
		detail = "no effective defense for " + string(scenario.AttackKind)
	}

	return FuzzResult{
		ScenarioID:         scenario.ScenarioID,
		Outcome:            outcome,
		DetectionTimeMs:    hr.ResponseTimeMs,
		MitigationApplied:  hr.MitigationMethod,
		DamageEstimate:     damageEstimate,
		DamageAvoided:      damageAvoided,
		VulnerabilityFound: vulnerable,
		Detail:             detail,
	}
}

// KindStats is one by_kind breakdown entry in FuzzerStats.
type KindStats struct {
	Total          int `json:"total"`
	Detected       int `json:"detected"`
	Mitigated      int `json:"mitigated"`
	Partial        int `json:"partial"`
	Bypassed       int `json:"bypassed"`
	Vulnerabilities int `json:"vulnerabilities"`
}

// FuzzerStats is the aggregate result of one Run() (spec §4.C8).
type FuzzerStats struct {
	TotalScenarios        int                       `json:"total_scenarios"`
	Vulnerabilities       int                       `json:"vulnerabilities"`
	AverageDetectionTimeMs float64                  `json:"average_detection_time_ms"`
	TotalDamageAvoided    float64                   `json:"total_damage_avoided"`
	ByKind                map[AttackKind]*KindStats `json:"by_kind"`
	Results               []FuzzResult              `json:"results"`
}
