// Package anomaly flags reporting-rate spikes and repeated suspicious system
// events for a user. It runs off the decision path (on demand or as a batch
// job) and feeds the enforcement engine.
package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

const checkPoints = 50.0

// Config holds the detector thresholds
type Config struct {
	// RateWindow and RateThreshold bound the reporting-rate spike check.
	RateWindow    time.Duration
	RateThreshold int

	// SuspiciousThreshold bounds the suspicious-activity check. This check
	// is a running total, not time-windowed.
	SuspiciousThreshold int
}

// DefaultConfig returns the default thresholds
func DefaultConfig() Config {
	return Config{
		RateWindow:          24 * time.Hour,
		RateThreshold:       10,
		SuspiciousThreshold: 5,
	}
}

// ActivitySource provides the per-user activity counts the detector reads
type ActivitySource interface {
	ReportCountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error)
	SuspiciousAuditCount(ctx context.Context, userID uuid.UUID) (int, error)
}

// Result carries the anomaly verdict plus the raw counts behind it, so
// consumers can explain the decision rather than just repeat the tier.
type Result struct {
	UserID           uuid.UUID  `json:"user_id"`
	AnomalyScore     float64    `json:"anomaly_score"`
	AnomalyLevel     risk.Level `json:"anomaly_level"`
	ReportsInWindow  int        `json:"reports_in_window"`
	SuspiciousEvents int        `json:"suspicious_events"`
	Flags            []string   `json:"flags"`
}

// Detector runs the anomaly checks
type Detector struct {
	source ActivitySource
	config Config
}

// NewDetector creates a detector with the given thresholds
func NewDetector(source ActivitySource, config Config) *Detector {
	return &Detector{source: source, config: config}
}

// Detect runs both checks for a user
func (d *Detector) Detect(ctx context.Context, userID uuid.UUID) (*Result, error) {
	since := time.Now().Add(-d.config.RateWindow)
	reports, err := d.source.ReportCountSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	suspicious, err := d.source.SuspiciousAuditCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	score := 0.0
	flags := []string{}

	if reports > d.config.RateThreshold {
		score += checkPoints
		flags = append(flags, fmt.Sprintf("reporting rate spike: %d reports within %s", reports, d.config.RateWindow))
	}

	if suspicious > d.config.SuspiciousThreshold {
		score += checkPoints
		flags = append(flags, fmt.Sprintf("repeated suspicious system events: %d total", suspicious))
	}

	score = risk.Clamp(score)

	return &Result{
		UserID:           userID,
		AnomalyScore:     score,
		AnomalyLevel:     risk.LevelForScore(score),
		ReportsInWindow:  reports,
		SuspiciousEvents: suspicious,
		Flags:            flags,
	}, nil
}
