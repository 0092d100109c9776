package triage

import (
	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// Assessor combines the current message analysis with the optional
// historical profile into a single risk level. The aggregation is monotonic:
// an absent profile can never lower the sentiment-only result.
type Assessor struct {
	highThreshold     float64
	moderateThreshold float64
}

// NewAssessor creates an assessor with the configured negativity thresholds.
func NewAssessor(highThreshold, moderateThreshold float64) Assessor {
	if highThreshold <= 0 {
		highThreshold = 0.75
	}
	if moderateThreshold <= 0 {
		moderateThreshold = 0.4
	}
	return Assessor{highThreshold: highThreshold, moderateThreshold: moderateThreshold}
}

// Assess returns the aggregated risk level and whether the conversation
// should be flagged for follow-up beyond this exchange.
func (a Assessor) Assess(mood sentiment.Result, intent risk.Intent, profile *risk.ProfileContext) (risk.Level, bool) {
	level := a.level(mood, intent, profile)

	followUp := level.AtLeast(risk.LevelModerado) || intent == risk.IntentSupport
	return level, followUp
}

func (a Assessor) level(mood sentiment.Result, intent risk.Intent, profile *risk.ProfileContext) risk.Level {
	// 危机意图无条件压过其他所有信号。
	if intent == risk.IntentCrisis {
		return risk.LevelAlto
	}

	current := risk.LevelBajo
	if mood.Label == sentiment.Negative {
		switch {
		case mood.Score >= a.highThreshold:
			current = risk.LevelAlto
		case mood.Score >= a.moderateThreshold:
			current = risk.LevelModerado
		}
	}

	if profile.HasPrior() {
		// 历史画像只能抬高等级,不能压低当前消息的评估。
		return risk.Max(current, profile.PriorLevel)
	}
	return current
}
