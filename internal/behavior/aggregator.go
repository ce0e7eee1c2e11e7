// Package behavior computes a per-user risk profile from that user's report
// history and audit trail. Pure read computation; the enforcement engine and
// dashboards consume the result.
package behavior

import (
	"context"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

const (
	highVolumePoints    = 20.0
	highVolumeThreshold = 20
	highVolumeFlag      = "unusually high reporting frequency"

	falseRatioPoints     = 30.0
	falseRatioThreshold  = 0.4
	falseRatioMinReports = 5
	falseRatioFlag       = "high ratio of false reports"

	suspiciousPoints    = 25.0
	suspiciousThreshold = 5
	suspiciousFlag      = "repeated suspicious account activity"

	criticalPoints    = 15.0
	criticalThreshold = 10
	criticalFlag      = "history of critical-risk reports"
)

// ReportStats summarizes a user's report history
type ReportStats struct {
	Total        int
	FalseReports int
	CriticalTier int
}

// HistorySource provides the per-user history the aggregator reads
type HistorySource interface {
	ReportStats(ctx context.Context, userID uuid.UUID) (*ReportStats, error)
	SuspiciousAuditCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Profile is a user's behavioral risk assessment
type Profile struct {
	UserID              uuid.UUID  `json:"user_id"`
	BehavioralRiskScore float64    `json:"behavioral_risk_score"`
	BehavioralRiskLevel risk.Level `json:"behavioral_risk_level"`
	Flags               []string   `json:"flags"`
}

// Aggregator derives behavioral risk profiles
type Aggregator struct {
	source HistorySource
}

// NewAggregator creates a behavioral aggregator
func NewAggregator(source HistorySource) *Aggregator {
	return &Aggregator{source: source}
}

// Profile computes the behavioral risk profile for a user
func (a *Aggregator) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	stats, err := a.source.ReportStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	suspicious, err := a.source.SuspiciousAuditCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	score := 0.0
	flags := []string{}

	if stats.Total > highVolumeThreshold {
		score += highVolumePoints
		flags = append(flags, highVolumeFlag)
	}

	if stats.Total > falseRatioMinReports {
		ratio := float64(stats.FalseReports) / float64(stats.Total)
		if ratio > falseRatioThreshold {
			score += falseRatioPoints
			flags = append(flags, falseRatioFlag)
		}
	}

	if suspicious > suspiciousThreshold {
		score += suspiciousPoints
		flags = append(flags, suspiciousFlag)
	}

	if stats.CriticalTier > criticalThreshold {
		score += criticalPoints
		flags = append(flags, criticalFlag)
	}

	score = risk.Clamp(score)

	return &Profile{
		UserID:              userID,
		BehavioralRiskScore: score,
		BehavioralRiskLevel: risk.LevelForScore(score),
		Flags:               flags,
	}, nil
}
