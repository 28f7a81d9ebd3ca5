package scoutregistry

// ReputationDeltaForOutcome is a small, pure lookup-policy helper offered as
// a grounded default for the reputation delta the host applies via
// UpdateReputation — spec §4.C2 leaves the exact delta policy to the host
// (spec's Open Questions note the source never implements one), so this
// function is never called internally. It mirrors the teacher's small
// pure role→level lookup helpers (heuristics.AlertLevelForRole,
// heuristics.TaintLevelForRole) that sit next to, but decoupled from, a
// stateful manager.
func ReputationDeltaForOutcome(inWinningCoalition bool, rejectedForConflict bool) float64 {
	switch {
	case inWinningCoalition:
		return 0.02
	case rejectedForConflict:
		return -0.01
	default:
		return 0
	}
}
