package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/alerts"
	"github.com/scamshield-ai/scamshield/internal/anomaly"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/correlation"
	"github.com/scamshield-ai/scamshield/internal/enforcement"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/threat"
	"github.com/scamshield-ai/scamshield/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateReport(ctx context.Context, report *Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *mockStore) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	args := m.Called(ctx, id)
	report, _ := args.Get(0).(*Report)
	return report, args.Error(1)
}

func (m *mockStore) ListReports(ctx context.Context, limit, offset int) ([]*Report, error) {
	args := m.Called(ctx, limit, offset)
	items, _ := args.Get(0).([]*Report)
	return items, args.Error(1)
}

func (m *mockStore) CountReports(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) SetRiskScore(ctx context.Context, id uuid.UUID, score float64, level risk.Level) error {
	args := m.Called(ctx, id, score, level)
	return args.Error(0)
}

func (m *mockStore) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockStore) AddVote(ctx context.Context, id uuid.UUID, up bool) error {
	args := m.Called(ctx, id, up)
	return args.Error(0)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockAssessor struct {
	mock.Mock
}

func (m *mockAssessor) Assess(ctx context.Context, report correlation.ReportRef, submitter *uuid.UUID) (*threat.Result, error) {
	args := m.Called(ctx, report, submitter)
	result, _ := args.Get(0).(*threat.Result)
	return result, args.Error(1)
}

type mockTrigger struct {
	mock.Mock
}

func (m *mockTrigger) Fire(ctx context.Context, assessment *threat.Result) ([]*alerts.Alert, error) {
	args := m.Called(ctx, assessment)
	fired, _ := args.Get(0).([]*alerts.Alert)
	return fired, args.Error(1)
}

type mockDetector struct {
	mock.Mock
}

func (m *mockDetector) Detect(ctx context.Context, userID uuid.UUID) (*anomaly.Result, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*anomaly.Result)
	return result, args.Error(1)
}

type mockEnforcer struct {
	mock.Mock
}

func (m *mockEnforcer) Apply(ctx context.Context, userID uuid.UUID, threatLevel, anomalyLevel risk.Level, unifiedScore, anomalyScore float64) (*enforcement.Result, error) {
	args := m.Called(ctx, userID, threatLevel, anomalyLevel, unifiedScore, anomalyScore)
	result, _ := args.Get(0).(*enforcement.Result)
	return result, args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) Record(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, subject, eventType string, data interface{}) error {
	args := m.Called(ctx, subject, eventType, data)
	return args.Error(0)
}

type pipelineMocks struct {
	store    *mockStore
	users    *mockUserStore
	assessor *mockAssessor
	trigger  *mockTrigger
	detector *mockDetector
	enforcer *mockEnforcer
	auditor  *mockRecorder
}

func newServiceWithMocks() (*Service, *pipelineMocks) {
	m := &pipelineMocks{
		store:    new(mockStore),
		users:    new(mockUserStore),
		assessor: new(mockAssessor),
		trigger:  new(mockTrigger),
		detector: new(mockDetector),
		enforcer: new(mockEnforcer),
		auditor:  new(mockRecorder),
	}
	service := NewService(m.store, m.users, m.assessor, m.trigger, m.detector, m.enforcer, m.auditor, nil)
	return service, m
}

func TestSubmitReportRunsFullPipeline(t *testing.T) {
	ctx := context.Background()
	submitterID := uuid.New()
	service, m := newServiceWithMocks()

	m.users.On("Exists", ctx, submitterID).Return(true, nil).Once()
	m.store.On("CreateReport", ctx, mock.MatchedBy(func(report *Report) bool {
		return report.Status == StatusPending &&
			report.ReportedBy != nil && *report.ReportedBy == submitterID
	})).Return(nil).Once()

	assessment := &threat.Result{
		UnifiedScore: 85,
		ThreatLevel:  risk.LevelCritical,
	}
	m.assessor.On("Assess", ctx, mock.MatchedBy(func(ref correlation.ReportRef) bool {
		return ref.Description == "they claimed to be from the bank security team"
	}), &submitterID).Return(assessment, nil).Once()

	m.store.On("SetRiskScore", ctx, mock.Anything, 85.0, risk.LevelCritical).Return(nil).Once()
	m.trigger.On("Fire", ctx, assessment).Return([]*alerts.Alert{}, nil).Once()
	m.detector.On("Detect", ctx, submitterID).Return(&anomaly.Result{
		UserID:       submitterID,
		AnomalyScore: 50,
		AnomalyLevel: risk.LevelMedium,
	}, nil).Once()
	m.enforcer.On("Apply", ctx, submitterID, risk.LevelCritical, risk.LevelMedium, 85.0, 50.0).
		Return(&enforcement.Result{UserID: submitterID, Outcome: enforcement.OutcomeFrozen}, nil).Once()
	m.auditor.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionReportSubmitted &&
			entry.ActorID != nil && *entry.ActorID == submitterID &&
			entry.Metadata["unified_score"] == 85.0
	})).Return(nil).Once()

	result, err := service.SubmitReport(ctx, submitterID, &SubmitReportRequest{
		Title:       "Fake bank call",
		Description: "they claimed to be from the bank security team",
		ScamType:    "phishing",
	})

	require.NoError(t, err)
	assert.Equal(t, 85.0, result.Report.RiskScore)
	assert.Equal(t, risk.LevelCritical, result.Report.RiskLevel)
	assert.Equal(t, assessment, result.ThreatResult)
	require.NotNil(t, result.Enforcement)
	assert.Equal(t, enforcement.OutcomeFrozen, result.Enforcement.Outcome)

	m.store.AssertExpectations(t)
	m.assessor.AssertExpectations(t)
	m.trigger.AssertExpectations(t)
	m.detector.AssertExpectations(t)
	m.enforcer.AssertExpectations(t)
	m.auditor.AssertExpectations(t)
}

func TestSubmitReportUnknownSubmitterFailsFast(t *testing.T) {
	ctx := context.Background()
	submitterID := uuid.New()
	service, m := newServiceWithMocks()

	m.users.On("Exists", ctx, submitterID).Return(false, nil).Once()

	_, err := service.SubmitReport(ctx, submitterID, &SubmitReportRequest{
		Title:       "Fake bank call",
		Description: "they claimed to be from the bank security team",
		ScamType:    "phishing",
	})

	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
	m.store.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
	m.assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReportSurvivesAssessmentFailure(t *testing.T) {
	ctx := context.Background()
	submitterID := uuid.New()
	service, m := newServiceWithMocks()

	m.users.On("Exists", ctx, submitterID).Return(true, nil).Once()
	m.store.On("CreateReport", ctx, mock.Anything).Return(nil).Once()
	m.assessor.On("Assess", ctx, mock.Anything, &submitterID).
		Return(nil, errors.New("corpus query timed out")).Once()
	m.auditor.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Metadata["assessed"] == false
	})).Return(nil).Once()

	result, err := service.SubmitReport(ctx, submitterID, &SubmitReportRequest{
		Title:       "Fake bank call",
		Description: "they claimed to be from the bank security team",
		ScamType:    "phishing",
	})

	require.NoError(t, err)
	assert.Nil(t, result.ThreatResult)
	assert.Equal(t, risk.LevelLow, result.Report.RiskLevel)
	m.store.AssertNotCalled(t, "SetRiskScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.enforcer.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitReportAuditFailureDoesNotFailSubmission(t *testing.T) {
	ctx := context.Background()
	submitterID := uuid.New()
	service, m := newServiceWithMocks()

	assessment := &threat.Result{UnifiedScore: 10, ThreatLevel: risk.LevelLow}

	m.users.On("Exists", ctx, submitterID).Return(true, nil).Once()
	m.store.On("CreateReport", ctx, mock.Anything).Return(nil).Once()
	m.assessor.On("Assess", ctx, mock.Anything, &submitterID).Return(assessment, nil).Once()
	m.store.On("SetRiskScore", ctx, mock.Anything, 10.0, risk.LevelLow).Return(nil).Once()
	m.trigger.On("Fire", ctx, assessment).Return([]*alerts.Alert{}, nil).Once()
	m.detector.On("Detect", ctx, submitterID).Return(&anomaly.Result{UserID: submitterID, AnomalyLevel: risk.LevelLow}, nil).Once()
	m.enforcer.On("Apply", ctx, submitterID, risk.LevelLow, risk.LevelLow, 10.0, 0.0).
		Return(&enforcement.Result{Outcome: enforcement.OutcomeNone}, nil).Once()
	m.auditor.On("Record", ctx, mock.Anything).Return(errors.New("audit store down")).Once()

	result, err := service.SubmitReport(ctx, submitterID, &SubmitReportRequest{
		Title:       "Fake bank call",
		Description: "they claimed to be from the bank security team",
		ScamType:    "phishing",
	})

	require.NoError(t, err)
	assert.Equal(t, assessment, result.ThreatResult)
}

func TestSubmitReportPublishFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	submitterID := uuid.New()
	_, m := newServiceWithMocks()

	publisher := new(mockPublisher)
	publisher.On("Publish", ctx, SubjectPipelineCompleted, "pipeline.completed", mock.Anything).
		Return(errors.New("nats unavailable")).Once()
	service := NewService(m.store, m.users, m.assessor, m.trigger, m.detector, m.enforcer, m.auditor, publisher)

	assessment := &threat.Result{UnifiedScore: 10, ThreatLevel: risk.LevelLow}
	m.users.On("Exists", ctx, submitterID).Return(true, nil).Once()
	m.store.On("CreateReport", ctx, mock.Anything).Return(nil).Once()
	m.assessor.On("Assess", ctx, mock.Anything, &submitterID).Return(assessment, nil).Once()
	m.store.On("SetRiskScore", ctx, mock.Anything, 10.0, risk.LevelLow).Return(nil).Once()
	m.trigger.On("Fire", ctx, assessment).Return([]*alerts.Alert{}, nil).Once()
	m.detector.On("Detect", ctx, submitterID).Return(&anomaly.Result{UserID: submitterID, AnomalyLevel: risk.LevelLow}, nil).Once()
	m.enforcer.On("Apply", ctx, submitterID, risk.LevelLow, risk.LevelLow, 10.0, 0.0).
		Return(&enforcement.Result{Outcome: enforcement.OutcomeNone}, nil).Once()
	m.auditor.On("Record", ctx, mock.Anything).Return(nil).Once()

	result, err := service.SubmitReport(ctx, submitterID, &SubmitReportRequest{
		Title:       "Fake bank call",
		Description: "they claimed to be from the bank security team",
		ScamType:    "phishing",
	})

	require.NoError(t, err)
	assert.Equal(t, assessment, result.ThreatResult)
	publisher.AssertExpectations(t)
}

func TestIngestFeedSkipsSubmitterStages(t *testing.T) {
	ctx := context.Background()
	service, m := newServiceWithMocks()

	assessment := &threat.Result{UnifiedScore: 40, ThreatLevel: risk.LevelMedium}

	m.store.On("CreateReport", ctx, mock.MatchedBy(func(report *Report) bool {
		return report.ReportedBy == nil && report.ExternalSource == "fraudfeed"
	})).Return(nil).Times(2)
	m.assessor.On("Assess", ctx, mock.Anything, (*uuid.UUID)(nil)).Return(assessment, nil).Times(2)
	m.store.On("SetRiskScore", ctx, mock.Anything, 40.0, risk.LevelMedium).Return(nil).Times(2)
	m.trigger.On("Fire", ctx, assessment).Return([]*alerts.Alert{}, nil).Times(2)
	m.auditor.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionFeedReportIngested && entry.ActorID == nil
	})).Return(nil).Times(2)

	result := service.IngestFeed(ctx, &IngestFeedRequest{
		Source: "fraudfeed",
		Items: []FeedItem{
			{Title: "Crypto doubler", Description: "guaranteed profit if you send bitcoin now", ScamType: "investment"},
			{Title: "Prize scam", Description: "you have won a prize, claim it with a gift card", ScamType: "lottery"},
		},
	})

	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, result.ReportIDs, 2)
	m.detector.AssertNotCalled(t, "Detect", mock.Anything, mock.Anything)
	m.enforcer.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.store.AssertExpectations(t)
}

func TestIngestFeedCountsPersistFailures(t *testing.T) {
	ctx := context.Background()
	service, m := newServiceWithMocks()

	m.store.On("CreateReport", ctx, mock.Anything).Return(errors.New("insert failed")).Once()

	result := service.IngestFeed(ctx, &IngestFeedRequest{
		Source: "fraudfeed",
		Items: []FeedItem{
			{Title: "Crypto doubler", Description: "guaranteed profit if you send bitcoin now", ScamType: "investment"},
		},
	})

	assert.Equal(t, 0, result.Accepted)
	assert.Equal(t, 1, result.Failed)
	m.assessor.AssertNotCalled(t, "Assess", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusValidTransition(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()
	reportID := uuid.New()
	service, m := newServiceWithMocks()

	m.store.On("GetReport", ctx, reportID).Return(&Report{ID: reportID, Status: StatusPending}, nil).Once()
	m.store.On("UpdateStatus", ctx, reportID, StatusUnderReview).Return(nil).Once()
	m.auditor.On("Record", ctx, mock.MatchedBy(func(entry *audit.Entry) bool {
		return entry.Action == audit.ActionReportStatusChanged &&
			entry.Metadata["from"] == "pending" &&
			entry.Metadata["to"] == "under_review"
	})).Return(nil).Once()

	report, err := service.UpdateStatus(ctx, actorID, reportID, StatusUnderReview)

	require.NoError(t, err)
	assert.Equal(t, StatusUnderReview, report.Status)
	m.store.AssertExpectations(t)
	m.auditor.AssertExpectations(t)
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()
	service, m := newServiceWithMocks()

	m.store.On("GetReport", ctx, reportID).Return(&Report{ID: reportID, Status: StatusResolved}, nil).Once()

	_, err := service.UpdateStatus(ctx, uuid.New(), reportID, StatusPending)

	require.Error(t, err)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.Code)
	m.store.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVoteMapsUpvote(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()
	service, m := newServiceWithMocks()

	m.store.On("AddVote", ctx, reportID, true).Return(nil).Once()

	require.NoError(t, service.Vote(ctx, reportID, "upvote"))
	m.store.AssertExpectations(t)
}

func TestVoteMapsDownvote(t *testing.T) {
	ctx := context.Background()
	reportID := uuid.New()
	service, m := newServiceWithMocks()

	m.store.On("AddVote", ctx, reportID, false).Return(nil).Once()

	require.NoError(t, service.Vote(ctx, reportID, "downvote"))
	m.store.AssertExpectations(t)
}

func TestStatusLifecycle(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusUnderReview))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusVerifiedScam))
	assert.True(t, StatusUnderReview.CanTransitionTo(StatusFalseReport))
	assert.True(t, StatusVerifiedScam.CanTransitionTo(StatusResolved))
	assert.True(t, StatusFalseReport.CanTransitionTo(StatusResolved))

	assert.False(t, StatusPending.CanTransitionTo(StatusVerifiedScam))
	assert.False(t, StatusResolved.CanTransitionTo(StatusPending))
	assert.False(t, StatusPending.CanTransitionTo(StatusPending))
}
