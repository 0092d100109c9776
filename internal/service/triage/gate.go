package triage

import "github.com/aura-plataforma/chatbot-service/internal/model/risk"

// Outcome is the terminal state of the crisis gate for one request. Every
// request passes the gate exactly once and lands in exactly one outcome.
type Outcome int

const (
	// OutcomeGenerate delegates the reply to the external generator.
	OutcomeGenerate Outcome = iota
	// OutcomeBypass short-circuits generation and emits the fixed
	// resource-bearing crisis payload.
	OutcomeBypass
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	if o == OutcomeBypass {
		return "bypass"
	}
	return "generate"
}

// Evaluate decides the gate outcome. Bypass iff the aggregated level is ALTO
// or the intent is crisis; the two outcomes are mutually exclusive by
// construction.
func Evaluate(level risk.Level, intent risk.Intent) Outcome {
	if level == risk.LevelAlto || intent == risk.IntentCrisis {
		return OutcomeBypass
	}
	return OutcomeGenerate
}
