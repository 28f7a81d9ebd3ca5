package sparring

// OracleChallenger is the external reasoning-model port spec §6 names: a
// capability that, given a prompt and a read-only bundle view, returns a
// structured attack-vector list and overall score/recommendation. A host
// may back this with a live model call or the SimulatedChallenger below;
// the core treats both identically.
type OracleChallenger interface {
	Challenge(prompt string, view BundleView) (ChallengeResponse, error)
}

// ChallengeResponse is everything an OracleChallenger call returns, short of
// the bookkeeping (challenge_id, issued_at) the Sparring gate itself adds.
type ChallengeResponse struct {
	AttackVectors   []AttackVector
	Vulnerabilities []Vulnerability
	OverallScore    float64
	Recommendation  Recommendation
}

// severityWeight is the risk-scoring table from spec §4.C7.
var severityWeight = map[Severity]float64{
	SeverityLow:      0.1,
	SeverityMedium:   0.25,
	SeverityHigh:     0.4,
	SeverityCritical: 0.6,
}

// SimulatedChallenger implements OracleChallenger deterministically from a
// BundleView, per the exact rules spec §4.C7 specifies for test
// reproducibility — no network call, no randomness. It is the default
// challenger a host plugs in when no live reasoning-model integration is
// configured, the same "simulate when the live path isn't wired" posture
// the spec's Open Questions note about the original system's Grok
// fallback (kept here as an explicit, always-on choice rather than a
// silent fallback-on-error).
type SimulatedChallenger struct{}

func (SimulatedChallenger) Challenge(prompt string, view BundleView) (ChallengeResponse, error) {
	var vectors []AttackVector
	var vulns []Vulnerability

	if view.MEVRisk > 0.3 {
		sev := SeverityHigh
		if view.MEVRisk > 0.6 {
			sev = SeverityCritical
		}
		vectors = append(vectors, AttackVector{
			Kind:           "sandwich",
			Severity:       sev,
			Probability:    view.MEVRisk,
			EstimatedLoss:  int64(float64(view.PromisedValue) * view.MEVRisk),
			CounterMeasure: "private-mempool",
		})
	}

	if view.SlippageRisk > 0.2 {
		vectors = append(vectors, AttackVector{
			Kind:        "frontrun",
			Severity:    SeverityMedium,
			Probability: view.SlippageRisk * 0.8,
		})
	}

	if view.TxCount > 2 {
		vulns = append(vulns, Vulnerability{
			Category:       "timing",
			Exploitability: 0.4,
			Impact:         0.6,
		})
	}

	if view.GasEstimate > 500000 {
		vectors = append(vectors, AttackVector{
			Kind:     "gas-war",
			Severity: SeverityMedium,
		})
	}

	if view.Kind == "arbitrage" {
		vectors = append(vectors, AttackVector{
			Kind:        "backrun",
			Severity:    SeverityLow,
			Probability: 0.5,
		})
	}

	var risk float64
	for _, v := range vectors {
		risk += severityWeight[v.Severity] * v.Probability
	}
	score := clip(100-100*risk, 0, 100)

	var rec Recommendation
	switch {
	case score >= 70:
		rec = RecommendProceed
	case score >= 40:
		rec = RecommendModify
	default:
		rec = RecommendAbort
	}

	return ChallengeResponse{
		AttackVectors:   vectors,
		Vulnerabilities: vulns,
		OverallScore:    score,
		Recommendation:  rec,
	}, nil
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
