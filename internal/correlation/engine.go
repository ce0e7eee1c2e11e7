// Package correlation compares a new report against the recent report corpus
// to surface shared contact identifiers and restated scam templates.
package correlation

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scamshield-ai/scamshield/internal/risk"
)

const (
	phonePoints   = 30.0
	emailPoints   = 25.0
	websitePoints = 25.0
	textPoints    = 20.0

	// Minimum token overlap for two descriptions to count as a match.
	textSimilarityThreshold = 0.4

	// Damping constant: how much total pairwise similarity is needed before
	// the cluster score saturates. Tunable, not load-bearing.
	clusterDamping = 5.0

	// Cluster score above which a coordinated campaign is declared.
	campaignThreshold = 70.0
)

var tokenSplitter = regexp.MustCompile(`\W+`)

// ReportSource provides the corpus slice a correlation run scans. The bound
// (since/limit) keeps the scan from growing with total report volume;
// implementations may back it with an indexed or windowed lookup.
type ReportSource interface {
	RecentReports(ctx context.Context, since time.Time, excludeID uuid.UUID, limit int) ([]ReportRef, error)
}

// Engine runs pairwise correlation of a report against the recent corpus
type Engine struct {
	source ReportSource
	window time.Duration
	limit  int
}

// NewEngine creates a correlation engine with the given corpus bound
func NewEngine(source ReportSource, window time.Duration, limit int) *Engine {
	return &Engine{source: source, window: window, limit: limit}
}

// Correlate scores report against every other recent report. Read-only; the
// caller persists whatever part of the result it needs.
func (e *Engine) Correlate(ctx context.Context, report ReportRef) (*Result, error) {
	since := time.Now().Add(-e.window)
	others, err := e.source.RecentReports(ctx, since, report.ID, e.limit)
	if err != nil {
		return nil, err
	}

	newTokens := tokenSet(report.Description)

	result := &Result{Correlations: []Edge{}}
	total := 0.0

	for _, other := range others {
		similarity, factors := e.compare(report, other, newTokens)
		if similarity <= 0 {
			continue
		}

		result.Correlations = append(result.Correlations, Edge{
			ReportID:       other.ID,
			Similarity:     similarity,
			MatchedFactors: factors,
		})
		total += similarity
	}

	result.ClusterRiskScore = risk.Clamp(total / clusterDamping)
	result.CampaignDetected = result.ClusterRiskScore > campaignThreshold

	return result, nil
}

func (e *Engine) compare(report, other ReportRef, newTokens map[string]struct{}) (float64, []string) {
	score := 0.0
	var factors []string

	if report.ContactPhone != "" && report.ContactPhone == other.ContactPhone {
		score += phonePoints
		factors = append(factors, "matching phone number")
	}
	if report.ContactEmail != "" && report.ContactEmail == other.ContactEmail {
		score += emailPoints
		factors = append(factors, "matching email address")
	}
	if report.ContactWebsite != "" && report.ContactWebsite == other.ContactWebsite {
		score += websitePoints
		factors = append(factors, "matching website")
	}

	if textSimilarity(newTokens, tokenSet(other.Description)) > textSimilarityThreshold {
		score += textPoints
		factors = append(factors, "similar description text")
	}

	return score, factors
}

// textSimilarity is the token overlap normalized by the NEW report's token
// count, not the union. Deliberately asymmetric: a short report restating a
// known scam template scores high even against a longer original.
func textSimilarity(newTokens, otherTokens map[string]struct{}) float64 {
	intersection := 0
	for token := range newTokens {
		if _, ok := otherTokens[token]; ok {
			intersection++
		}
	}

	denom := len(newTokens)
	if denom < 1 {
		denom = 1
	}
	return float64(intersection) / float64(denom)
}

func tokenSet(text string) map[string]struct{} {
	tokens := tokenSplitter.Split(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}
