package risk

// Level 表示单条消息评估出的心理情绪风险等级，按严重程度排序。
type Level string

const (
	LevelBajo     Level = "BAJO"
	LevelModerado Level = "MODERADO"
	LevelAlto     Level = "ALTO"
)

var levelRank = map[Level]int{
	LevelBajo:     0,
	LevelModerado: 1,
	LevelAlto:     2,
}

// Known reports whether the level is one of the three defined values.
func (l Level) Known() bool {
	_, ok := levelRank[l]
	return ok
}

// AtLeast reports whether l is at or above other in severity.
func (l Level) AtLeast(other Level) bool {
	return levelRank[l] >= levelRank[other]
}

// Max returns the more severe of two levels.
func Max(a, b Level) Level {
	if levelRank[b] > levelRank[a] {
		return b
	}
	return a
}

// Intent 表示消息的意图类别，每条消息恰好属于其中一类。
type Intent string

const (
	IntentCrisis      Intent = "crisis"
	IntentSupport     Intent = "support"
	IntentInformation Intent = "information"
	IntentGreeting    Intent = "greeting"
)

// ProfileContext is the historical slice of a user owned by the clustering
// service. A nil *ProfileContext means no history is available, which is an
// expected state and never an error.
type ProfileContext struct {
	UserID string `json:"user_id"`
	// PriorLevel is the historical risk level, empty when the clustering
	// service could not place the user.
	PriorLevel Level `json:"prior_risk_level,omitempty"`
	// RiskFactors are human-readable factors derived from behavioral KPIs.
	RiskFactors []string `json:"historical_risk_factors,omitempty"`
}

// HasPrior reports whether the profile carries a usable historical level.
func (p *ProfileContext) HasPrior() bool {
	return p != nil && p.PriorLevel.Known()
}
