// Package threat combines content, correlation and behavioral signals into
// one unified score and severity tier for a report submission.
package threat

import (
	"context"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/behavior"
	"github.com/scamshield-ai/scamshield/internal/correlation"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

// Signal weights. Message content is the primary signal, cross-report
// correlation a strong secondary, the submitter's track record a tertiary
// modifier.
const (
	contentWeight    = 0.5
	clusterWeight    = 0.3
	behavioralWeight = 0.2
)

// Correlator produces the cluster/campaign signal for a report
type Correlator interface {
	Correlate(ctx context.Context, report correlation.ReportRef) (*correlation.Result, error)
}

// BehaviorProfiler produces the submitter's behavioral risk profile
type BehaviorProfiler interface {
	Profile(ctx context.Context, userID uuid.UUID) (*behavior.Profile, error)
}

// Result is the complete explanation trail for one assessment. Downstream
// consumers (alerting, enforcement, audit) justify their decisions from it,
// not just from the number.
type Result struct {
	ReportID        uuid.UUID           `json:"report_id"`
	UnifiedScore    float64             `json:"unified_score"`
	ThreatLevel     risk.Level          `json:"threat_level"`
	ContentScore    float64             `json:"content_score"`
	ContentFlags    []string            `json:"content_flags"`
	CorrelationData *correlation.Result `json:"correlation_data"`
	BehavioralScore float64             `json:"behavioral_score"`
	BehavioralFlags []string            `json:"behavioral_flags"`
}

// Orchestrator runs the scoring engines and blends their output. The content
// analyzer is injected, so a learned model can replace the keyword rule
// engine without touching this package.
type Orchestrator struct {
	analyzer   risk.Analyzer
	correlator Correlator
	profiler   BehaviorProfiler
}

// NewOrchestrator creates an orchestrator over the three engines
func NewOrchestrator(analyzer risk.Analyzer, correlator Correlator, profiler BehaviorProfiler) *Orchestrator {
	return &Orchestrator{
		analyzer:   analyzer,
		correlator: correlator,
		profiler:   profiler,
	}
}

// Assess scores one report. submitter is nil for externally ingested
// reports; the behavioral signal is zero in that case.
func (o *Orchestrator) Assess(ctx context.Context, report correlation.ReportRef, submitter *uuid.UUID) (*Result, error) {
	assessment := o.analyzer.Analyze(report.Description)

	corr, err := o.correlator.Correlate(ctx, report)
	if err != nil {
		return nil, err
	}

	behavioralScore := 0.0
	behavioralFlags := []string{}
	if submitter != nil {
		profile, err := o.profiler.Profile(ctx, *submitter)
		if err != nil {
			return nil, err
		}
		behavioralScore = profile.BehavioralRiskScore
		behavioralFlags = profile.Flags
	}

	unified := risk.Clamp(
		contentWeight*assessment.Score +
			clusterWeight*corr.ClusterRiskScore +
			behavioralWeight*behavioralScore,
	)

	return &Result{
		ReportID:        report.ID,
		UnifiedScore:    unified,
		ThreatLevel:     risk.LevelForScore(unified),
		ContentScore:    assessment.Score,
		ContentFlags:    assessment.Flags,
		CorrelationData: corr,
		BehavioralScore: behavioralScore,
		BehavioralFlags: behavioralFlags,
	}, nil
}
