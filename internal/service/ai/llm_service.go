package ai

import (
	"context"
	"fmt"
	"log"
	"math/rand"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/config"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// Request carries the triage context the generator turns into an empathetic
// reply. The crisis gate guarantees no crisis-level request ever reaches
// this service.
type Request struct {
	UserID      string
	UserMessage string
	Sentiment   sentiment.Result
	Intent      risk.Intent
	Level       risk.Level
	Profile     *risk.ProfileContext
}

// Service encapsulates the Groq-backed response generation.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the generator service and compiles its prompt chain.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Generate produces a reply for a non-crisis request. Callers bound ctx and
// translate any failure into the fixed fallback message.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	response, err := s.chain.Invoke(ctx, s.buildChainInput(req))
	if err != nil {
		return "", fmt.Errorf("failed to run generation chain: %w", err)
	}
	if response == nil || response.Content == "" {
		return "", fmt.Errorf("generator returned empty completion")
	}

	log.Printf("[ai] generated response for user=%s intent=%s level=%s length=%d",
		truncateID(req.UserID), req.Intent, req.Level, len(response.Content))
	return response.Content, nil
}

// Stream streams the reply chunk by chunk via the same chain.
func (s *Service) Stream(ctx context.Context, req Request) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, s.buildChainInput(req))
	if err != nil {
		return nil, fmt.Errorf("failed to stream generation chain: %w", err)
	}
	return stream, nil
}

// GetChatModel 返回底层的聊天模型,供情感分类链复用。
func (s *Service) GetChatModel() model.ChatModel {
	return s.chatModel
}

func (s *Service) buildChainInput(req Request) map[string]any {
	return map[string]any{
		"system": BuildSystemPrompt(req),
		"query":  req.UserMessage,
	}
}

var greetingVariants = []string{
	"¡Hola%s! 👋 ¿Cómo te sientes hoy?",
	"¡Qué gusto verte%s! ¿En qué puedo ayudarte?",
	"¡Hola%s! Estoy aquí para escucharte. 💙",
}

// Greeting returns a personalized conversation opener without running the
// triage pipeline.
func Greeting(userName string) string {
	namePart := ""
	if userName != "" {
		namePart = ", " + userName
	}
	variant := greetingVariants[rand.Intn(len(greetingVariants))]
	return fmt.Sprintf(variant, namePart)
}

func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}
