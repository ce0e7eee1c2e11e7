package reports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/anomaly"
	"github.com/scamshield-ai/scamshield/internal/behavior"
)

type reportHistory interface {
	ReportStats(ctx context.Context, userID uuid.UUID) (*behavior.ReportStats, error)
	ReportCountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
}

type suspicionCounter interface {
	CountSuspiciousForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// HistoryAdapter joins the report store and the audit store into the read
// surface the behavioral aggregator and anomaly detector consume.
type HistoryAdapter struct {
	reports reportHistory
	audits  suspicionCounter
}

var (
	_ behavior.HistorySource = (*HistoryAdapter)(nil)
	_ anomaly.ActivitySource = (*HistoryAdapter)(nil)
)

// NewHistoryAdapter creates the combined history source
func NewHistoryAdapter(reports reportHistory, audits suspicionCounter) *HistoryAdapter {
	return &HistoryAdapter{reports: reports, audits: audits}
}

// ReportStats summarizes the user's report history
func (h *HistoryAdapter) ReportStats(ctx context.Context, userID uuid.UUID) (*behavior.ReportStats, error) {
	return h.reports.ReportStats(ctx, userID)
}

// ReportCountSince counts the user's reports created after since
func (h *HistoryAdapter) ReportCountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	return h.reports.ReportCountSince(ctx, userID, since)
}

// SuspiciousAuditCount counts the user's suspicious audit entries
func (h *HistoryAdapter) SuspiciousAuditCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return h.audits.CountSuspiciousForUser(ctx, userID)
}
