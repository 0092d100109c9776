package chat

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/intent"
	analysis "github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
	"github.com/aura-plataforma/chatbot-service/internal/service/ai"
	"github.com/aura-plataforma/chatbot-service/internal/service/profile"
	"github.com/aura-plataforma/chatbot-service/internal/service/triage"
)

// ErrInvalidInput marks malformed client requests (empty user id or
// whitespace-only message). It is the only error the HTTP layer reports to
// the caller; every other failure degrades to a best-effort reply.
var ErrInvalidInput = errors.New("invalid input")

// Scorer evaluates message sentiment. Implementations never fail: an
// unclassifiable text scores neutral.
type Scorer interface {
	Score(ctx context.Context, text string) analysis.Result
}

// Generator produces the reply text for non-crisis requests.
type Generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

const (
	defaultProfileTimeout  = 3 * time.Second
	defaultGenerateTimeout = 30 * time.Second
)

// Service orchestrates the triage pipeline: validation, sentiment and
// intent analysis, profile lookup, risk aggregation, crisis gating and
// response assembly. Stateless across requests except for the transcript
// store.
type Service struct {
	scorer          Scorer
	classifier      *intent.Classifier
	profiles        profile.Fetcher
	generator       Generator
	assessor        triage.Assessor
	store           *Store
	profileTimeout  time.Duration
	generateTimeout time.Duration
}

// NewService wires the pipeline collaborators together.
func NewService(scorer Scorer, classifier *intent.Classifier, profiles profile.Fetcher, generator Generator, assessor triage.Assessor) *Service {
	if profiles == nil {
		profiles = profile.Noop{}
	}
	return &Service{
		scorer:          scorer,
		classifier:      classifier,
		profiles:        profiles,
		generator:       generator,
		assessor:        assessor,
		store:           NewStore(),
		profileTimeout:  defaultProfileTimeout,
		generateTimeout: defaultGenerateTimeout,
	}
}

// Evaluation is the result of the pre-generation stages for one request.
type Evaluation struct {
	Sentiment analysis.Result
	Intent    risk.Intent
	Profile   *risk.ProfileContext
	Level     risk.Level
	FollowUp  bool
	Outcome   triage.Outcome
}

// Metadata renders the evaluation as the response metadata for the
// non-bypass branch.
func (e Evaluation) Metadata() model.Metadata {
	return model.Metadata{
		IntentDetected:          e.Intent,
		RiskLevel:               e.Level,
		SentimentLabel:          e.Sentiment.Label,
		NegativityScore:         e.Sentiment.Score,
		RequiresFollowUp:        e.FollowUp,
		CrisisResourcesIncluded: false,
	}
}

// Evaluate runs validation, sentiment/intent analysis, the profile fetch
// and risk aggregation. The profile lookup runs concurrently with the
// on-path analysis and is joined before assessment; its absence never fails
// the evaluation.
func (s *Service) Evaluate(ctx context.Context, req model.MessageRequest) (Evaluation, error) {
	if strings.TrimSpace(req.UserID) == "" || strings.TrimSpace(req.Message) == "" {
		return Evaluation{}, ErrInvalidInput
	}

	profileCh := make(chan *risk.ProfileContext, 1)
	go func() {
		pctx, cancel := context.WithTimeout(ctx, s.profileTimeout)
		defer cancel()
		profileCh <- s.profiles.Fetch(pctx, req.UserID)
	}()

	mood := s.scorer.Score(ctx, req.Message)

	detected, err := s.classifier.Classify(req.Message, mood)
	if err != nil {
		return Evaluation{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var prof *risk.ProfileContext
	select {
	case prof = <-profileCh:
	case <-ctx.Done():
		return Evaluation{}, ctx.Err()
	}

	level, followUp := s.assessor.Assess(mood, detected, prof)

	return Evaluation{
		Sentiment: mood,
		Intent:    detected,
		Profile:   prof,
		Level:     level,
		FollowUp:  followUp,
		Outcome:   triage.Evaluate(level, detected),
	}, nil
}

// Handle processes one message end to end and returns the immutable
// response envelope. Only invalid input produces an error; generator
// failures degrade to the fixed fallback reply.
func (s *Service) Handle(ctx context.Context, req model.MessageRequest) (model.MessageResponse, error) {
	eval, err := s.Evaluate(ctx, req)
	if err != nil {
		return model.MessageResponse{}, err
	}

	var resp model.MessageResponse
	if eval.Outcome == triage.OutcomeBypass {
		log.Printf("[chat] crisis bypass engaged for user=%s", truncateID(req.UserID))
		resp = model.MessageResponse{
			Message: triage.CrisisMessage(),
			Metadata: model.Metadata{
				IntentDetected:          risk.IntentCrisis,
				RiskLevel:               risk.LevelAlto,
				SentimentLabel:          eval.Sentiment.Label,
				NegativityScore:         eval.Sentiment.Score,
				RequiresFollowUp:        true,
				CrisisResourcesIncluded: true,
			},
			Timestamp: time.Now().UTC(),
		}
	} else {
		resp = s.generate(ctx, req, eval)
	}

	s.Record(req, resp)
	return resp, nil
}

func (s *Service) generate(ctx context.Context, req model.MessageRequest, eval Evaluation) model.MessageResponse {
	gctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
	defer cancel()

	metadata := eval.Metadata()
	text, err := s.generator.Generate(gctx, s.GenerationRequest(req, eval))
	if err != nil || strings.TrimSpace(text) == "" {
		log.Printf("[chat] generation failed for user=%s, using fallback: %v", truncateID(req.UserID), err)
		text = triage.FallbackMessage
		metadata.RequiresFollowUp = true
	}

	return model.MessageResponse{
		Message:   text,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

// GenerationRequest builds the generator input from the triage context.
func (s *Service) GenerationRequest(req model.MessageRequest, eval Evaluation) ai.Request {
	return ai.Request{
		UserID:      req.UserID,
		UserMessage: req.Message,
		Sentiment:   eval.Sentiment,
		Intent:      eval.Intent,
		Level:       eval.Level,
		Profile:     eval.Profile,
	}
}

// Record persists the exchange when the client supplied a session id.
func (s *Service) Record(req model.MessageRequest, resp model.MessageResponse) {
	if req.SessionID == "" {
		return
	}
	s.store.Append(req.SessionID, req.UserID, req.Message, resp)
}

// Transcript returns the recorded exchanges of a session.
func (s *Service) Transcript(sessionID string) ([]model.Exchange, error) {
	return s.store.Transcript(sessionID)
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
