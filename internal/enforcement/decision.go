package enforcement

import (
	"github.com/scamshield-ai/scamshield/internal/audit"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

// Outcome names the enforcement branch that matched
type Outcome string

const (
	OutcomeFrozen    Outcome = "frozen"
	OutcomeThrottled Outcome = "throttled"
	OutcomeFlagged   Outcome = "flagged"
	OutcomeNone      Outcome = "none"
)

// Decision is the pure result of the escalation ladder, before any state or
// audit write happens.
type Decision struct {
	Outcome      Outcome
	AuditAction  string // empty when no branch matched
	FreezeUser   bool
	ThrottleUser bool
}

// ChangesState reports whether the decision carries an account-state write.
// Flagging is monitoring only.
func (d Decision) ChangesState() bool {
	return d.FreezeUser || d.ThrottleUser
}

// Decide applies the strict-priority escalation ladder. The first matching
// branch wins; a critical signal on either axis always freezes, never
// throttles.
func Decide(threatLevel, anomalyLevel risk.Level) Decision {
	switch {
	case threatLevel == risk.LevelCritical || anomalyLevel == risk.LevelCritical:
		return Decision{Outcome: OutcomeFrozen, AuditAction: audit.ActionAccountFrozen, FreezeUser: true}
	case threatLevel == risk.LevelHigh || anomalyLevel == risk.LevelHigh:
		return Decision{Outcome: OutcomeThrottled, AuditAction: audit.ActionAccountThrottled, ThrottleUser: true}
	case threatLevel == risk.LevelMedium || anomalyLevel == risk.LevelMedium:
		return Decision{Outcome: OutcomeFlagged, AuditAction: audit.ActionUserFlagged}
	default:
		return Decision{Outcome: OutcomeNone}
	}
}
