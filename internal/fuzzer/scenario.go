package fuzzer

// AttackKind enumerates the synthetic MEV attack families spec §1/§4.C8
// names.
type AttackKind string

const (
	AttackSandwich               AttackKind = "sandwich"
	AttackFrontrun               AttackKind = "frontrun"
	AttackBackrun                AttackKind = "backrun"
	AttackTimeBandit             AttackKind = "time-bandit"
	AttackGeneralizedFrontRunning AttackKind = "generalized-front-running"
	AttackJITLiquidity           AttackKind = "jit-liquidity"
	AttackArbitrageInterception AttackKind = "arbitrage-interception"
)

// AllKinds is the default full attack-kind population, used when a config
// doesn't restrict generation to focus_attacks.
var AllKinds = []AttackKind{
	AttackSandwich,
	AttackFrontrun,
	AttackBackrun,
	AttackTimeBandit,
	AttackGeneralizedFrontRunning,
	AttackJITLiquidity,
	AttackArbitrageInterception,
}

// Severity mirrors spec §3's four-level scale.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Parameters is the scenario parameter record (spec §3/§4.C8): the common
// fields every scenario carries, plus the kind-specific fields populated
// only by the relevant elaboration step (zero-valued otherwise, matching
// the teacher's flat-struct-with-omitempty convention in
// pkg/models/transaction.go rather than a per-kind parameter type union).
type Parameters struct {
	TargetValue      float64 `json:"target_value"`
	TargetGas        float64 `json:"target_gas"`
	BlockDelay       int     `json:"block_delay"`
	TimingWindowMs   float64 `json:"timing_window_ms"`
	AttackerBudget   float64 `json:"attacker_budget"`
	MinProfit        float64 `json:"min_profit"`
	MaxSlippage      float64 `json:"max_slippage"`
	GasMultiplier    float64 `json:"gas_multiplier"`
	PriorityFeeBump  float64 `json:"priority_fee_bump"`

	// Kind-specific fields.
	FrontRatio          float64 `json:"front_ratio,omitempty"`           // sandwich
	ReorgDepth          int     `json:"reorg_depth,omitempty"`           // time-bandit
	RequiresSimulation  bool    `json:"requires_simulation,omitempty"`   // generalized-front-running
	RequiresCallTrace   bool    `json:"requires_call_trace,omitempty"`   // generalized-front-running
	Liquidity           float64 `json:"liquidity,omitempty"`             // jit-liquidity
	TickRangeLow        int     `json:"tick_range_low,omitempty"`        // jit-liquidity
	TickRangeHigh       int     `json:"tick_range_high,omitempty"`       // jit-liquidity
	OriginalProfit      float64 `json:"original_profit,omitempty"`       // arbitrage-interception
	InterceptorProfit   float64 `json:"interceptor_profit,omitempty"`    // arbitrage-interception
}

// AttackScenario is the fuzzer's generated input unit (spec §3).
type AttackScenario struct {
	ScenarioID      string     `json:"scenario_id"`
	AttackKind      AttackKind `json:"attack_kind"`
	Severity        Severity   `json:"severity"`
	Parameters      Parameters `json:"parameters"`
	ExpectedOutcome string     `json:"expected_outcome"`
}

// generateScenario builds one scenario of the given kind, drawing every
// random field from rng in a fixed field order so that two generators
// seeded identically produce byte-identical scenarios (spec §8 "Fuzzer
// reproducibility").
func generateScenario(id string, kind AttackKind, rng *lcg) AttackScenario {
	value := rng.rangeFloat(0, 100)
	gas := rng.rangeFloat(0, 200)
	blockDelay := rng.intn(3) // 0-2
	timingWindow := rng.rangeFloat(100, 2100)
	gasMultiplier := rng.rangeFloat(1.0, 1.5)
	priorityFeeBump := rng.rangeFloat(1.0, 3.0)

	params := Parameters{
		TargetValue:     value,
		TargetGas:       gas,
		BlockDelay:      blockDelay,
		TimingWindowMs:  timingWindow,
		AttackerBudget:  2 * value,
		MinProfit:       value / 100,
		MaxSlippage:     rng.rangeFloat(0, 5),
		GasMultiplier:   gasMultiplier,
		PriorityFeeBump: priorityFeeBump,
	}

	switch kind {
	case AttackSandwich:
		params.FrontRatio = rng.rangeFloat(30, 70)
	case AttackFrontrun:
		params.PriorityFeeBump = rng.rangeFloat(1.5, 4.0)
	case AttackBackrun:
		params.BlockDelay = 0
	case AttackTimeBandit:
		params.ReorgDepth = 1 + rng.intn(3) // 1-3
	case AttackGeneralizedFrontRunning:
		params.RequiresSimulation = true
		params.RequiresCallTrace = true
	case AttackJITLiquidity:
		params.Liquidity = 10 * value
		params.TickRangeLow = rng.intn(101)
		params.TickRangeHigh = rng.intn(101)
		if params.TickRangeLow > params.TickRangeHigh {
			params.TickRangeLow, params.TickRangeHigh = params.TickRangeHigh, params.TickRangeLow
		}
	case AttackArbitrageInterception:
		params.OriginalProfit = value
		params.InterceptorProfit = value * rng.rangeFloat(0.1, 0.9)
	}

	return AttackScenario{
		ScenarioID:      id,
		AttackKind:      kind,
		Severity:        classifySeverity(value, kind),
		Parameters:      params,
		ExpectedOutcome: "detected",
	}
}

// classifySeverity implements spec §4.C8's value-based scale, with
// time-bandit forced to critical regardless of value (spec §4.C8's
// per-kind elaboration: "time-bandit ... severity=critical").
func classifySeverity(value float64, kind AttackKind) Severity {
	if kind == AttackTimeBandit {
		return SeverityCritical
	}
	switch {
	case value > 50:
		return SeverityCritical
	case value > 10:
		return SeverityHigh
	case value > 1:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
