package reports

import (
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/enforcement"
	"github.com/scamshield-ai/scamshield/internal/risk"
	"github.com/scamshield-ai/scamshield/internal/threat"
)

// Status is the report lifecycle state
type Status string

const (
	StatusPending      Status = "pending"
	StatusUnderReview  Status = "under_review"
	StatusVerifiedScam Status = "verified_scam"
	StatusFalseReport  Status = "false_report"
	StatusResolved     Status = "resolved"
)

// validTransitions encodes the review lifecycle:
// pending -> under_review -> verified_scam | false_report -> resolved
var validTransitions = map[Status][]Status{
	StatusPending:      {StatusUnderReview},
	StatusUnderReview:  {StatusVerifiedScam, StatusFalseReport},
	StatusVerifiedScam: {StatusResolved},
	StatusFalseReport:  {StatusResolved},
	StatusResolved:     {},
}

// CanTransitionTo reports whether moving to next is a valid lifecycle step
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Report is a scam report. RiskScore and RiskLevel are set by the pipeline at
// creation; RiskLevel is always derived from RiskScore, never set directly.
type Report struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScamType       string     `json:"scam_type"`
	ContactPhone   string     `json:"contact_phone,omitempty"`
	ContactEmail   string     `json:"contact_email,omitempty"`
	ContactWebsite string     `json:"contact_website,omitempty"`
	ReportedBy     *uuid.UUID `json:"reported_by,omitempty"` // nil for ingested feed items
	ExternalSource string     `json:"external_source,omitempty"`
	Status         Status     `json:"status"`
	RiskScore      float64    `json:"risk_score"`
	RiskLevel      risk.Level `json:"risk_level"`
	VotesUp        int        `json:"votes_up"`
	VotesDown      int        `json:"votes_down"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SubmitReportRequest is the payload for a user-submitted report
type SubmitReportRequest struct {
	Title          string `json:"title" binding:"required,min=3,max=200"`
	Description    string `json:"description" binding:"required,min=10,max=10000"`
	ScamType       string `json:"scam_type" binding:"required,max=100"`
	ContactPhone   string `json:"contact_phone" binding:"omitempty,max=50"`
	ContactEmail   string `json:"contact_email" binding:"omitempty,email"`
	ContactWebsite string `json:"contact_website" binding:"omitempty,url"`
}

// FeedItem is one normalized report from an external threat feed
type FeedItem struct {
	Title          string `json:"title" binding:"required,min=3,max=200"`
	Description    string `json:"description" binding:"required,min=10,max=10000"`
	ScamType       string `json:"scam_type" binding:"required,max=100"`
	ContactPhone   string `json:"contact_phone" binding:"omitempty,max=50"`
	ContactEmail   string `json:"contact_email" binding:"omitempty,email"`
	ContactWebsite string `json:"contact_website" binding:"omitempty,url"`
}

// IngestFeedRequest is a batch of external feed reports
type IngestFeedRequest struct {
	Source string     `json:"source" binding:"required,max=100"`
	Items  []FeedItem `json:"items" binding:"required,min=1,max=500,dive"`
}

// UpdateStatusRequest is the payload for a human review transition
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,report_status"`
}

// VoteRequest is the payload for a community vote
type VoteRequest struct {
	VoteType string `json:"vote_type" binding:"required,vote_type"`
}

// SubmissionResult pairs the persisted report with the pipeline's full
// explanation trail.
type SubmissionResult struct {
	Report       *Report             `json:"report"`
	ThreatResult *threat.Result      `json:"threat_result"`
	Enforcement  *enforcement.Result `json:"enforcement,omitempty"`
}

// IngestResult summarizes a feed batch run
type IngestResult struct {
	Source    string      `json:"source"`
	Accepted  int         `json:"accepted"`
	Failed    int         `json:"failed"`
	ReportIDs []uuid.UUID `json:"report_ids"`
}
