package users

import (
	"time"

	"github.com/google/uuid"
)

// RiskState is the enforcement posture of one account. Frozen blocks new
// submissions entirely; throttled keeps submissions open under a reduced
// rate limit.
type RiskState struct {
	UserID      uuid.UUID `json:"user_id"`
	IsFrozen    bool      `json:"is_frozen"`
	IsThrottled bool      `json:"is_throttled"`
	UpdatedAt   time.Time `json:"updated_at"`
}
