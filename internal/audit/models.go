package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action tags written by the pipeline. The enforcement and alerting
// components write these; dashboards and the behavioral aggregator read
// them back.
const (
	ActionReportSubmitted     = "REPORT_SUBMITTED"
	ActionReportStatusChanged = "REPORT_STATUS_CHANGED"
	ActionFeedReportIngested  = "FEED_REPORT_INGESTED"
	ActionAutoAlertTriggered  = "AUTO_ALERT_TRIGGERED"
	ActionAccountFrozen       = "ACCOUNT_FROZEN"
	ActionAccountThrottled    = "ACCOUNT_THROTTLED"
	ActionUserFlagged         = "USER_FLAGGED"
	ActionAccountReset        = "ACCOUNT_RESET"
)

// Entry is an immutable audit record. Entries are appended by every pipeline
// decision point that changes state or emits an alert, and never updated or
// deleted by the core.
type Entry struct {
	ID           uuid.UUID              `json:"id"`
	ActorID      *uuid.UUID             `json:"actor_id,omitempty"` // nil for system actions
	Action       string                 `json:"action"`
	EntityType   string                 `json:"entity_type"`
	EntityID     uuid.UUID              `json:"entity_id"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	IsSuspicious bool                   `json:"is_suspicious"`
	CreatedAt    time.Time              `json:"created_at"`
}
