package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/scamshield-ai/scamshield/internal/alerts"
	"github.com/scamshield-ai/scamshield/internal/anomaly"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/correlation"
	"github.com/scamshield-ai/scamshield/internal/enforcement"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/threat"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"go.uber.org/zap"
)

// Event subjects published during a pipeline run
const (
	SubjectPipelineCompleted  = "pipeline.completed"
	SubjectAlertTriggered     = "alert.triggered"
	SubjectEnforcementApplied = "enforcement.applied"
)

var pipelineRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "pipeline_runs_total",
		Help: "Total number of threat pipeline runs",
	},
	[]string{"trigger", "threat_level"},
)

// Store is the report persistence surface the service needs
type Store interface {
	CreateReport(ctx context.Context, report *Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*Report, error)
	ListReports(ctx context.Context, limit, offset int) ([]*Report, error)
	CountReports(ctx context.Context) (int64, error)
	SetRiskScore(ctx context.Context, id uuid.UUID, score float64, level risk.Level) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	AddVote(ctx context.Context, id uuid.UUID, up bool) error
}

// UserStore checks submitter existence before the pipeline runs
type UserStore interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Assessor runs the unified threat assessment
type Assessor interface {
	Assess(ctx context.Context, report correlation.ReportRef, submitter *uuid.UUID) (*threat.Result, error)
}

// AlertTrigger raises alerts off an assessment
type AlertTrigger interface {
	Fire(ctx context.Context, assessment *threat.Result) ([]*alerts.Alert, error)
}

// AnomalyDetector runs the per-user anomaly checks
type AnomalyDetector interface {
	Detect(ctx context.Context, userID uuid.UUID) (*anomaly.Result, error)
}

// Enforcer applies the escalation ladder
type Enforcer interface {
	Apply(ctx context.Context, userID uuid.UUID, threatLevel, anomalyLevel risk.Level, unifiedScore, anomalyScore float64) (*enforcement.Result, error)
}

// Recorder appends the pipeline audit trail
type Recorder interface {
	Record(ctx context.Context, entry *audit.Entry) error
}

// Publisher emits pipeline events. Best-effort; nil disables publishing.
type Publisher interface {
	Publish(ctx context.Context, subject, eventType string, data interface{}) error
}

// Service coordinates the threat pipeline. The engines are pure; every write
// (report, score, alert, state, audit) happens here.
type Service struct {
	store     Store
	users     UserStore
	assessor  Assessor
	trigger   AlertTrigger
	detector  AnomalyDetector
	enforcer  Enforcer
	auditor   Recorder
	publisher Publisher
}

// NewService creates the report service
func NewService(store Store, users UserStore, assessor Assessor, trigger AlertTrigger, detector AnomalyDetector, enforcer Enforcer, auditor Recorder, publisher Publisher) *Service {
	return &Service{
		store:     store,
		users:     users,
		assessor:  assessor,
		trigger:   trigger,
		detector:  detector,
		enforcer:  enforcer,
		auditor:   auditor,
		publisher: publisher,
	}
}

// SubmitReport persists a user-submitted report and runs the full pipeline
// on it: assessment, alerting, anomaly detection, enforcement, audit.
func (s *Service) SubmitReport(ctx context.Context, submitterID uuid.UUID, req *SubmitReportRequest) (*SubmissionResult, error) {
	exists, err := s.users.Exists(ctx, submitterID)
	if err != nil {
		return nil, common.NewInternalServerError("failed to look up submitter")
	}
	if !exists {
		return nil, common.NewNotFoundError("submitter not found", nil)
	}

	now := time.Now()
	report := &Report{
		ID:             uuid.New(),
		Title:          req.Title,
		Description:    req.Description,
		ScamType:       req.ScamType,
		ContactPhone:   req.ContactPhone,
		ContactEmail:   req.ContactEmail,
		ContactWebsite: req.ContactWebsite,
		ReportedBy:     &submitterID,
		Status:         StatusPending,
		RiskLevel:      risk.LevelLow,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateReport(ctx, report); err != nil {
		logger.WithContext(ctx).Error("failed to persist report", zap.Error(err))
		return nil, common.NewInternalServerError("failed to persist report")
	}

	assessment, enforcementResult := s.runPipeline(ctx, report, &submitterID, "submission")

	if err := s.auditor.Record(ctx, &audit.Entry{
		ActorID:    &submitterID,
		Action:     audit.ActionReportSubmitted,
		EntityType: "report",
		EntityID:   report.ID,
		Metadata:   assessmentMetadata(assessment),
	}); err != nil {
		logger.WithContext(ctx).Error("submission audit write failed",
			zap.String("report_id", report.ID.String()), zap.Error(err))
	}

	s.publishCompleted(ctx, report, assessment)

	return &SubmissionResult{
		Report:       report,
		ThreatResult: assessment,
		Enforcement:  enforcementResult,
	}, nil
}

// IngestFeed runs the identical pipeline over a batch of external feed
// reports. With no submitter there is nothing to aggregate, anomaly-check or
// freeze, so those stages are skipped per item.
func (s *Service) IngestFeed(ctx context.Context, req *IngestFeedRequest) *IngestResult {
	result := &IngestResult{Source: req.Source, ReportIDs: make([]uuid.UUID, 0, len(req.Items))}

	for i := range req.Items {
		item := &req.Items[i]
		now := time.Now()
		report := &Report{
			ID:             uuid.New(),
			Title:          item.Title,
			Description:    item.Description,
			ScamType:       item.ScamType,
			ContactPhone:   item.ContactPhone,
			ContactEmail:   item.ContactEmail,
			ContactWebsite: item.ContactWebsite,
			ExternalSource: req.Source,
			Status:         StatusPending,
			RiskLevel:      risk.LevelLow,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := s.store.CreateReport(ctx, report); err != nil {
			logger.WithContext(ctx).Error("failed to persist feed report",
				zap.String("source", req.Source), zap.Error(err))
			result.Failed++
			continue
		}

		assessment, _ := s.runPipeline(ctx, report, nil, "feed")

		if err := s.auditor.Record(ctx, &audit.Entry{
			Action:     audit.ActionFeedReportIngested,
			EntityType: "report",
			EntityID:   report.ID,
			Metadata:   assessmentMetadata(assessment),
		}); err != nil {
			logger.WithContext(ctx).Error("ingestion audit write failed",
				zap.String("report_id", report.ID.String()), zap.Error(err))
		}

		s.publishCompleted(ctx, report, assessment)

		result.Accepted++
		result.ReportIDs = append(result.ReportIDs, report.ID)
	}

	return result
}

// runPipeline assesses one persisted report and applies the downstream
// decisions. Stage failures after assessment degrade to logging; the report
// and its score are never rolled back.
func (s *Service) runPipeline(ctx context.Context, report *Report, submitter *uuid.UUID, trigger string) (*threat.Result, *enforcement.Result) {
	log := logger.WithContext(ctx)

	ref := correlation.ReportRef{
		ID:             report.ID,
		Description:    report.Description,
		ContactPhone:   report.ContactPhone,
		ContactEmail:   report.ContactEmail,
		ContactWebsite: report.ContactWebsite,
	}

	assessment, err := s.assessor.Assess(ctx, ref, submitter)
	if err != nil {
		log.Error("threat assessment failed",
			zap.String("report_id", report.ID.String()), zap.Error(err))
		pipelineRunsTotal.WithLabelValues(trigger, "error").Inc()
		return nil, nil
	}

	if err := s.store.SetRiskScore(ctx, report.ID, assessment.UnifiedScore, assessment.ThreatLevel); err != nil {
		log.Error("failed to persist risk score",
			zap.String("report_id", report.ID.String()), zap.Error(err))
	} else {
		report.RiskScore = assessment.UnifiedScore
		report.RiskLevel = assessment.ThreatLevel
	}

	fired, err := s.trigger.Fire(ctx, assessment)
	if err != nil {
		log.Error("alert trigger failed",
			zap.String("report_id", report.ID.String()), zap.Error(err))
	}
	for _, alert := range fired {
		s.publish(ctx, SubjectAlertTriggered, map[string]interface{}{
			"alert_id":  alert.ID,
			"report_id": report.ID,
			"audience":  alert.Audience,
			"severity":  alert.Severity,
		})
	}

	var enforcementResult *enforcement.Result
	if submitter != nil {
		anomalyLevel := risk.LevelLow
		anomalyScore := 0.0
		detection, err := s.detector.Detect(ctx, *submitter)
		if err != nil {
			log.Warn("anomaly detection failed, treating user as quiet",
				zap.String("user_id", submitter.String()), zap.Error(err))
		} else {
			anomalyLevel = detection.AnomalyLevel
			anomalyScore = detection.AnomalyScore
		}

		enforcementResult, err = s.enforcer.Apply(ctx, *submitter, assessment.ThreatLevel, anomalyLevel, assessment.UnifiedScore, anomalyScore)
		if err != nil {
			log.Error("enforcement failed",
				zap.String("user_id", submitter.String()), zap.Error(err))
		} else if enforcementResult.Outcome != enforcement.OutcomeNone {
			s.publish(ctx, SubjectEnforcementApplied, map[string]interface{}{
				"user_id":   *submitter,
				"report_id": report.ID,
				"outcome":   enforcementResult.Outcome,
			})
		}
	}

	pipelineRunsTotal.WithLabelValues(trigger, string(assessment.ThreatLevel)).Inc()

	return assessment, enforcementResult
}

// GetReport fetches one report
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, common.NewNotFoundError("report not found", err)
		}
		return nil, common.NewInternalServerError("failed to fetch report")
	}
	return report, nil
}

// ListReports returns a page of reports with the total count
func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]*Report, int64, error) {
	items, err := s.store.ListReports(ctx, limit, offset)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to list reports")
	}

	total, err := s.store.CountReports(ctx)
	if err != nil {
		return nil, 0, common.NewInternalServerError("failed to count reports")
	}

	return items, total, nil
}

// UpdateStatus applies a human review transition and audits it
func (s *Service) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, next Status) (*Report, error) {
	report, err := s.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransitionTo(next) {
		return nil, common.NewConflictError("invalid status transition from " + string(report.Status) + " to " + string(next))
	}

	if err := s.store.UpdateStatus(ctx, id, next); err != nil {
		return nil, common.NewInternalServerError("failed to update status")
	}

	if err := s.auditor.Record(ctx, &audit.Entry{
		ActorID:    &actorID,
		Action:     audit.ActionReportStatusChanged,
		EntityType: "report",
		EntityID:   id,
		Metadata: map[string]interface{}{
			"from": string(report.Status),
			"to":   string(next),
		},
	}); err != nil {
		logger.WithContext(ctx).Error("status audit write failed",
			zap.String("report_id", id.String()), zap.Error(err))
	}

	report.Status = next
	report.UpdatedAt = time.Now()
	return report, nil
}

// Vote records a community vote on a report
func (s *Service) Vote(ctx context.Context, id uuid.UUID, voteType string) error {
	err := s.store.AddVote(ctx, id, voteType == "upvote")
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return common.NewNotFoundError("report not found", err)
		}
		return common.NewInternalServerError("failed to record vote")
	}
	return nil
}

func (s *Service) publishCompleted(ctx context.Context, report *Report, assessment *threat.Result) {
	if assessment == nil {
		return
	}
	s.publish(ctx, SubjectPipelineCompleted, map[string]interface{}{
		"report_id":     report.ID,
		"unified_score": assessment.UnifiedScore,
		"threat_level":  assessment.ThreatLevel,
	})
}

// publish is best-effort: pipeline events feed dashboards and notifications,
// never the decision path.
func (s *Service) publish(ctx context.Context, subject string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, subject, data); err != nil {
		logger.WithContext(ctx).Warn("failed to publish pipeline event",
			zap.String("subject", subject), zap.Error(err))
	}
}

func assessmentMetadata(assessment *threat.Result) map[string]interface{} {
	if assessment == nil {
		return map[string]interface{}{"assessed": false}
	}
	return map[string]interface{}{
		"unified_score": assessment.UnifiedScore,
		"threat_level":  string(assessment.ThreatLevel),
	}
}
