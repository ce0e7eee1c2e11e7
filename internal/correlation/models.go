package correlation

import (
	"github.com/google/uuid"
)

// ReportRef is the slice of a report the correlation engine compares on
type ReportRef struct {
	ID             uuid.UUID
	Description    string
	ContactPhone   string
	ContactEmail   string
	ContactWebsite string
}

// Edge is a pairwise correlation result. Edges are ephemeral: they are
// returned to the caller for explainability but never persisted; only the
// aggregate cluster score reaches the audit trail.
type Edge struct {
	ReportID       uuid.UUID `json:"report_id"`
	Similarity     float64   `json:"similarity"`
	MatchedFactors []string  `json:"matched_factors"`
}

// Result is the output of one correlation run
type Result struct {
	Correlations     []Edge  `json:"correlations"`
	ClusterRiskScore float64 `json:"cluster_risk_score"`
	CampaignDetected bool    `json:"campaign_detected"`
}
