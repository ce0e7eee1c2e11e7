package alerts

import (
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

// Audience scopes who sees an alert
const (
	AudienceAdmins    = "admins"
	AudienceAllUsers  = "all_users"
	AudienceCommunity = "community"
)

// Alert categories
const (
	CategoryThreatDetection   = "threat_detection"
	CategoryCampaignWarning   = "campaign_warning"
	CategoryCommunityAdvisory = "community_advisory"
)

// Alert is a warning surfaced to users or operators. Alerts raised by the
// pipeline carry the report that produced them and a nil CreatedBy.
type Alert struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Category  string     `json:"category"`
	Severity  risk.Level `json:"severity"`
	Audience  string     `json:"audience"`
	ReportID  *uuid.UUID `json:"report_id,omitempty"`
	CreatedBy *uuid.UUID `json:"created_by,omitempty"` // nil when raised by the pipeline
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsActive reports whether the alert should still be shown
func (a *Alert) IsActive() bool {
	return a.ExpiresAt == nil || a.ExpiresAt.After(time.Now())
}
