// Package risk holds the scoring vocabulary shared by every engine in the
// threat pipeline: the 0-100 score range, the tier thresholds, and the
// analyzer capability the orchestrator scores content through.
package risk

// Level is a risk tier derived from a numeric score
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Tier thresholds, boundary-inclusive on the lower end. Every scoring
// component in the pipeline maps scores through these same cutoffs.
const (
	CriticalThreshold = 80.0
	HighThreshold     = 60.0
	MediumThreshold   = 30.0
)

// LevelForScore maps a score to its tier
func LevelForScore(score float64) Level {
	switch {
	case score >= CriticalThreshold:
		return LevelCritical
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// Clamp bounds a score to [0, 100]
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// AtLeast reports whether level is at or above min in tier order
func (l Level) AtLeast(min Level) bool {
	return l.rank() >= min.rank()
}

func (l Level) rank() int {
	switch l {
	case LevelCritical:
		return 3
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	default:
		return 0
	}
}

// Assessment is the output contract of a content analyzer: a score plus the
// flags that explain it.
type Assessment struct {
	Score float64  `json:"score"`
	Level Level    `json:"risk_level"`
	Flags []string `json:"flags"`
}

// Analyzer scores free text for scam risk. The default implementation is the
// keyword rule engine; a learned model can be injected in its place as long
// as it honors this contract.
type Analyzer interface {
	Analyze(description string) Assessment
}
