package sparring

import (
	"math/big"
)

// Session pairs a completed Challenge with the Counter that resolved it,
// the unit exported by export_sessions (spec §6).
type Session struct {
	Challenge Challenge
	Counter   Counter
}

// recordSession is called once ProcessCounter resolves a challenge; kept
// separate from ProcessCounter itself so AutoCounter and live callers share
// one accounting path.
func (s *Sparring) recordSession(sess Session) {
	s.mu.Lock()
	s.sessions = append(s.sessions, sess)
	s.mu.Unlock()
}

// ExportAttackVector is AttackVector with estimated_loss re-encoded as a
// decimal string (spec §6: "decimal-string encoding of large-integer
// amounts is mandatory for cross-language stability").
type ExportAttackVector struct {
	Kind           string  `json:"kind"`
	Severity       string  `json:"severity"`
	Probability    float64 `json:"probability"`
	EstimatedLoss  string  `json:"estimated_loss"`
	CounterMeasure string  `json:"counter_measure,omitempty"`
}

// ExportChallenge is Challenge with its attack vectors' amounts stringified.
type ExportChallenge struct {
	ChallengeID     string                `json:"challenge_id"`
	BundleID        string                `json:"bundle_id"`
	IssuedAtUnixMs  int64                 `json:"issued_at_unix_ms"`
	AttackVectors   []ExportAttackVector  `json:"attack_vectors"`
	Vulnerabilities []Vulnerability       `json:"vulnerabilities"`
	OverallScore    float64               `json:"overall_score"`
	Recommendation  string                `json:"recommendation"`
}

// ExportSession is one sessions[] entry.
type ExportSession struct {
	Challenge ExportChallenge `json:"challenge"`
	Counter   Counter         `json:"counter"`
}

// ExportStats aggregates counters across every recorded session.
type ExportStats struct {
	TotalSessions      int    `json:"total_sessions"`
	Proceeded          int    `json:"proceeded"`
	Retried            int    `json:"retried"`
	Aborted            int    `json:"aborted"`
	DeadlineMisses     int    `json:"deadline_misses"`
	TotalEstimatedLoss string `json:"total_estimated_loss"`
}

// ExportDocument is the full export_sessions() artifact (spec §6).
type ExportDocument struct {
	ExportTimestampUnixMs int64           `json:"export_timestamp_unix_ms"`
	Config                Config          `json:"config"`
	Stats                 ExportStats     `json:"stats"`
	Sessions              []ExportSession `json:"sessions"`
}

// ExportSessions builds the export document. now is taken as a parameter
// rather than read from s.clock so the caller controls the stamped
// export_timestamp deterministically in tests.
func (s *Sparring) ExportSessions(nowUnixMs int64) ExportDocument {
	s.mu.Lock()
	sessions := make([]Session, len(s.sessions))
	copy(sessions, s.sessions)
	s.mu.Unlock()

	stats := ExportStats{TotalSessions: len(sessions)}
	totalLoss := new(big.Int)

	out := make([]ExportSession, len(sessions))
	for i, sess := range sessions {
		switch sess.Counter.Decision {
		case DecisionProceed:
			stats.Proceeded++
		case DecisionRetry:
			stats.Retried++
		case DecisionAbort:
			stats.Aborted++
		}
		if !sess.Counter.WithinDeadline {
			stats.DeadlineMisses++
		}

		vectors := make([]ExportAttackVector, len(sess.Challenge.AttackVectors))
		for j, v := range sess.Challenge.AttackVectors {
			totalLoss.Add(totalLoss, big.NewInt(v.EstimatedLoss))
			vectors[j] = ExportAttackVector{
				Kind:           v.Kind,
				Severity:       string(v.Severity),
				Probability:    v.Probability,
				EstimatedLoss:  big.NewInt(v.EstimatedLoss).String(),
				CounterMeasure: v.CounterMeasure,
			}
		}

		out[i] = ExportSession{
			Challenge: ExportChallenge{
				ChallengeID:     sess.Challenge.ChallengeID,
				BundleID:        sess.Challenge.BundleID,
				IssuedAtUnixMs:  sess.Challenge.IssuedAtUnixMs,
				AttackVectors:   vectors,
				Vulnerabilities: sess.Challenge.Vulnerabilities,
				OverallScore:    sess.Challenge.OverallScore,
				Recommendation:  string(sess.Challenge.Recommendation),
			},
			Counter: sess.Counter,
		}
	}
	stats.TotalEstimatedLoss = totalLoss.String()

	return ExportDocument{
		ExportTimestampUnixMs: nowUnixMs,
		Config:                s.cfg,
		Stats:                 stats,
		Sessions:              out,
	}
}
