package triage

import (
	"testing"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

func newTestAssessor() Assessor {
	return NewAssessor(0.75, 0.4)
}

func TestAssessCrisisIntentAlwaysAlto(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Positive, Score: 0}
	level, followUp := a.Assess(mood, risk.IntentCrisis, nil)

	if level != risk.LevelAlto {
		t.Fatalf("crisis intent must yield ALTO, got %s", level)
	}
	if !followUp {
		t.Fatal("crisis assessments must require follow-up")
	}
}

func TestAssessNegativityThresholds(t *testing.T) {
	a := newTestAssessor()

	cases := []struct {
		score float64
		want  risk.Level
	}{
		{0.9, risk.LevelAlto},
		{0.75, risk.LevelAlto},
		{0.5, risk.LevelModerado},
		{0.4, risk.LevelModerado},
		{0.2, risk.LevelBajo},
	}

	for _, tc := range cases {
		mood := sentiment.Result{Label: sentiment.Negative, Score: tc.score}
		level, _ := a.Assess(mood, risk.IntentInformation, nil)
		if level != tc.want {
			t.Fatalf("score %f: expected %s, got %s", tc.score, tc.want, level)
		}
	}
}

func TestAssessNonNegativeMoodIgnoresScore(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Neutral, Score: 0.9}
	level, followUp := a.Assess(mood, risk.IntentInformation, nil)

	if level != risk.LevelBajo {
		t.Fatalf("neutral mood must stay BAJO, got %s", level)
	}
	if followUp {
		t.Fatal("low-risk information requests need no follow-up")
	}
}

func TestAssessSupportIntentRequiresFollowUp(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Negative, Score: 0.2}
	level, followUp := a.Assess(mood, risk.IntentSupport, nil)

	if level != risk.LevelBajo {
		t.Fatalf("expected BAJO, got %s", level)
	}
	if !followUp {
		t.Fatal("support intent must flag follow-up even at low risk")
	}
}

func TestAssessProfileRaisesLevel(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Neutral, Score: 0}
	profile := &risk.ProfileContext{UserID: "u-1", PriorLevel: risk.LevelModerado}

	level, followUp := a.Assess(mood, risk.IntentInformation, profile)
	if level != risk.LevelModerado {
		t.Fatalf("prior MODERADO must raise a BAJO message, got %s", level)
	}
	if !followUp {
		t.Fatal("moderate aggregated risk must flag follow-up")
	}
}

func TestAssessProfileNeverLowersLevel(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Negative, Score: 0.9}
	profile := &risk.ProfileContext{UserID: "u-1", PriorLevel: risk.LevelBajo}

	level, _ := a.Assess(mood, risk.IntentSupport, profile)
	if level != risk.LevelAlto {
		t.Fatalf("prior BAJO must not lower an ALTO message, got %s", level)
	}
}

func TestAssessProfileWithoutPriorIsIgnored(t *testing.T) {
	a := newTestAssessor()

	mood := sentiment.Result{Label: sentiment.Negative, Score: 0.5}
	profile := &risk.ProfileContext{UserID: "u-1"}

	level, _ := a.Assess(mood, risk.IntentSupport, profile)
	if level != risk.LevelModerado {
		t.Fatalf("unplaced profile must not change the level, got %s", level)
	}
}

func TestNewAssessorDefaultsOnInvalidThresholds(t *testing.T) {
	a := NewAssessor(0, -1)

	mood := sentiment.Result{Label: sentiment.Negative, Score: 0.8}
	level, _ := a.Assess(mood, risk.IntentInformation, nil)
	if level != risk.LevelAlto {
		t.Fatalf("default high threshold should classify 0.8 as ALTO, got %s", level)
	}
}
