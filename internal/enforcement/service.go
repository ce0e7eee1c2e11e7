package enforcement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/users"
	"github.com/scamshield-ai/scamshield/pkg/logger"
	"go.uber.org/zap"
)

// lockTTL bounds how long a crashed holder can block enforcement for a user
const lockTTL = 10 * time.Second

var enforcementActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "enforcement_actions_total",
		Help: "Total number of enforcement actions applied",
	},
	[]string{"outcome"},
)

// UserStore is the account-state capability the service needs
type UserStore interface {
	GetRiskState(ctx context.Context, userID uuid.UUID) (*users.RiskState, error)
	SetRiskState(ctx context.Context, userID uuid.UUID, frozen, throttled bool) error
}

// Recorder appends the audit trail for enforcement actions
type Recorder interface {
	Record(ctx context.Context, entry *audit.Entry) error
}

// Locker serializes enforcement for one user
type Locker interface {
	Acquire(ctx context.Context) error
	Release(ctx context.Context) error
}

// LockProvider hands out a fresh per-user lock. Backed by Redis SET NX in
// production.
type LockProvider func(key string) Locker

// Result reports what enforcement did for one pipeline run
type Result struct {
	UserID       uuid.UUID  `json:"user_id"`
	ThreatLevel  risk.Level `json:"threat_level"`
	AnomalyLevel risk.Level `json:"anomaly_level"`
	Outcome      Outcome    `json:"outcome"`
	ActionsTaken []string   `json:"actions_taken"`
	StateChanged bool       `json:"state_changed"`
}

// Service applies enforcement decisions to account state. Two concurrent
// pipeline runs for the same user serialize on a per-user lock so an
// escalation is never lost to a racing write.
type Service struct {
	store      UserStore
	auditor    Recorder
	locks      LockProvider
	dedupAudit bool
}

// NewService creates an enforcement service. When dedupAudit is set,
// repeating a decision that leaves account state untouched skips the
// duplicate audit entry.
func NewService(store UserStore, auditor Recorder, locks LockProvider, dedupAudit bool) *Service {
	return &Service{store: store, auditor: auditor, locks: locks, dedupAudit: dedupAudit}
}

// Apply runs the escalation ladder for one user and persists the outcome.
// The audit write failing does not undo the state change.
func (s *Service) Apply(ctx context.Context, userID uuid.UUID, threatLevel, anomalyLevel risk.Level, unifiedScore, anomalyScore float64) (*Result, error) {
	result := &Result{
		UserID:       userID,
		ThreatLevel:  threatLevel,
		AnomalyLevel: anomalyLevel,
		ActionsTaken: []string{},
	}

	decision := Decide(threatLevel, anomalyLevel)
	result.Outcome = decision.Outcome
	if decision.Outcome == OutcomeNone {
		return result, nil
	}

	lock := s.locks("enforcement:user:" + userID.String())
	if err := lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.WithContext(ctx).Warn("failed to release enforcement lock",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}()

	if decision.ChangesState() {
		state, err := s.store.GetRiskState(ctx, userID)
		if err != nil {
			return nil, err
		}

		// Enforcement only tightens. Throttling never lifts an
		// existing freeze, and reapplying the current tier is a no-op.
		frozen := state.IsFrozen || decision.FreezeUser
		throttled := state.IsThrottled || decision.ThrottleUser
		if frozen != state.IsFrozen || throttled != state.IsThrottled {
			if err := s.store.SetRiskState(ctx, userID, frozen, throttled); err != nil {
				return nil, err
			}
			result.StateChanged = true
		}
	}

	if !result.StateChanged && s.dedupAudit && decision.ChangesState() {
		return result, nil
	}

	entry := &audit.Entry{
		Action:     decision.AuditAction,
		EntityType: "user",
		EntityID:   userID,
		Metadata: map[string]interface{}{
			"unified_score": unifiedScore,
			"anomaly_score": anomalyScore,
			"threat_level":  string(threatLevel),
			"anomaly_level": string(anomalyLevel),
		},
		IsSuspicious: true,
	}
	if err := s.auditor.Record(ctx, entry); err != nil {
		logger.WithContext(ctx).Error("enforcement audit write failed",
			zap.String("user_id", userID.String()),
			zap.String("action", decision.AuditAction),
			zap.Error(err),
		)
	} else {
		result.ActionsTaken = append(result.ActionsTaken, decision.AuditAction)
	}

	enforcementActionsTotal.WithLabelValues(string(decision.Outcome)).Inc()

	return result, nil
}

// Reset clears frozen and throttled state for a user. This is the explicit
// administrative override; escalated state never decays on its own.
func (s *Service) Reset(ctx context.Context, adminID, userID uuid.UUID) error {
	lock := s.locks("enforcement:user:" + userID.String())
	if err := lock.Acquire(ctx); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.WithContext(ctx).Warn("failed to release enforcement lock",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}()

	if err := s.store.SetRiskState(ctx, userID, false, false); err != nil {
		return err
	}

	if err := s.auditor.Record(ctx, &audit.Entry{
		ActorID:    &adminID,
		Action:     audit.ActionAccountReset,
		EntityType: "user",
		EntityID:   userID,
	}); err != nil {
		logger.WithContext(ctx).Error("reset audit write failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	return nil
}

// GetState returns the current enforcement posture for a user
func (s *Service) GetState(ctx context.Context, userID uuid.UUID) (*users.RiskState, error) {
	return s.store.GetRiskState(ctx, userID)
}
