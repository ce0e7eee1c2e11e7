package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/threat"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"go.uber.org/zap"
)

const (
	// Escalation band that warns the community without reaching the
	// critical tier.
	escalationBandLower = 60.0
	escalationBandUpper = 80.0

	persistAttempts = 3
	persistBackoff  = 100 * time.Millisecond
)

var alertsTriggeredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "alerts_triggered_total",
		Help: "Total number of alerts raised by the pipeline",
	},
	[]string{"audience"},
)

// Store is the persistence capability the trigger needs
type Store interface {
	CreateAlert(ctx context.Context, alert *Alert) error
}

// Recorder appends audit entries for every alert the trigger raises
type Recorder interface {
	Record(ctx context.Context, entry *audit.Entry) error
}

var _ Recorder = (*audit.Writer)(nil)

// Trigger turns an orchestrator assessment into zero or more alerts. The
// three rules are evaluated independently; any subset may fire for one
// report.
type Trigger struct {
	store   Store
	auditor Recorder
}

// NewTrigger creates an auto-alert trigger
func NewTrigger(store Store, auditor Recorder) *Trigger {
	return &Trigger{store: store, auditor: auditor}
}

// Fire evaluates the alert rules against one assessment and persists every
// alert that fires. A persistence failure on one rule does not stop the
// remaining rules; the first error is returned after all rules have run.
func (t *Trigger) Fire(ctx context.Context, assessment *threat.Result) ([]*Alert, error) {
	fired := make([]*Alert, 0, 3)
	var firstErr error

	persist := func(alert *Alert) {
		if err := t.persistAlert(ctx, alert, assessment); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return
		}
		fired = append(fired, alert)
	}

	if assessment.ThreatLevel == risk.LevelCritical {
		persist(&Alert{
			Title:    "Critical threat detected",
			Message:  fmt.Sprintf("A report was assessed as a critical threat (unified score %.1f). Immediate review recommended.", assessment.UnifiedScore),
			Category: CategoryThreatDetection,
			Severity: risk.LevelCritical,
			Audience: AudienceAdmins,
			ReportID: &assessment.ReportID,
		})
	}

	if assessment.CorrelationData != nil && assessment.CorrelationData.CampaignDetected {
		persist(&Alert{
			Title:    "Coordinated scam campaign detected",
			Message:  "Multiple related reports indicate an active scam campaign. Be cautious of unsolicited contact matching recent reports.",
			Category: CategoryCampaignWarning,
			Severity: risk.LevelHigh,
			Audience: AudienceAllUsers,
			ReportID: &assessment.ReportID,
		})
	}

	if assessment.UnifiedScore >= escalationBandLower && assessment.UnifiedScore < escalationBandUpper {
		persist(&Alert{
			Title:    "Elevated threat activity",
			Message:  fmt.Sprintf("A recent report scored in the elevated threat band (unified score %.1f). Community caution is advised.", assessment.UnifiedScore),
			Category: CategoryCommunityAdvisory,
			Severity: risk.LevelHigh,
			Audience: AudienceCommunity,
			ReportID: &assessment.ReportID,
		})
	}

	return fired, firstErr
}

func (t *Trigger) persistAlert(ctx context.Context, alert *Alert, assessment *threat.Result) error {
	alert.ID = uuid.New()
	alert.CreatedAt = time.Now()

	var err error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		err = t.store.CreateAlert(ctx, alert)
		if err == nil {
			break
		}
		if attempt < persistAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * persistBackoff):
			}
		}
	}
	if err != nil {
		logger.WithContext(ctx).Error("failed to persist alert",
			zap.String("audience", alert.Audience),
			zap.String("report_id", assessment.ReportID.String()),
			zap.Error(err),
		)
		return err
	}

	alertsTriggeredTotal.WithLabelValues(alert.Audience).Inc()

	auditErr := t.auditor.Record(ctx, &audit.Entry{
		Action:     audit.ActionAutoAlertTriggered,
		EntityType: "alert",
		EntityID:   alert.ID,
		Metadata: map[string]interface{}{
			"unified_score": assessment.UnifiedScore,
			"threat_level":  string(assessment.ThreatLevel),
		},
	})
	if auditErr != nil {
		logger.WithContext(ctx).Warn("alert persisted but audit trail write failed",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(auditErr),
		)
	}

	return nil
}
