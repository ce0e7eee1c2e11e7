// Package content implements the keyword rule engine that scores a report's
// free-text description. It is the default risk.Analyzer; the orchestrator
// never depends on it directly.
package content

import (
	"fmt"
	"strings"

	"github.com/scamshield-ai/scamshield/internal/risk"
)

const (
	highRiskPoints      = 15.0
	impersonationPoints = 10.0
	financialPoints     = 12.0

	// Long, highly structured text correlates with scripted scam copy.
	longTextLength = 500
	longTextPoints = 5.0
	longTextFlag   = "long structured persuasion text"
)

// Scorer scores descriptions against the weighted keyword categories.
// Stateless; safe for concurrent use.
type Scorer struct{}

// Ensure the scorer satisfies the orchestrator's analyzer capability.
var _ risk.Analyzer = (*Scorer)(nil)

// NewScorer creates a keyword scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Analyze scores a description. Pure function of its input: identical text
// always yields an identical assessment.
func (s *Scorer) Analyze(description string) risk.Assessment {
	lowered := strings.ToLower(description)

	score := 0.0
	flags := []string{}

	for _, phrase := range highRiskPhrases {
		if strings.Contains(lowered, phrase) {
			score += highRiskPoints
			flags = append(flags, fmt.Sprintf("high-risk phrase: %s", phrase))
		}
	}

	for _, phrase := range impersonationPhrases {
		if strings.Contains(lowered, phrase) {
			score += impersonationPoints
			flags = append(flags, fmt.Sprintf("impersonation phrase: %s", phrase))
		}
	}

	for _, phrase := range financialTriggerPhrases {
		if strings.Contains(lowered, phrase) {
			score += financialPoints
			flags = append(flags, fmt.Sprintf("financial trigger: %s", phrase))
		}
	}

	if len(description) > longTextLength {
		score += longTextPoints
		flags = append(flags, longTextFlag)
	}

	score = risk.Clamp(score)

	return risk.Assessment{
		Score: score,
		Level: risk.LevelForScore(score),
		Flags: flags,
	}
}
