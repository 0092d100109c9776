package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	analysis "github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
)

// Config 控制情感打分服务的行为。
type Config struct {
	Enabled bool
}

// Service scores message sentiment. When the LLM classifier is enabled it
// runs a compiled chain over the shared chat model; on any failure, or when
// disabled, it falls back to the deterministic lexicon analyzer. Score never
// returns an error: an unclassifiable text degrades to a neutral default.
type Service struct {
	enabled    bool
	classifier compose.Runnable[map[string]any, *schema.Message]
	fallback   func(string) analysis.Result
}

const classifierSystemPrompt = `Eres un clasificador de sentimiento para mensajes en español de una plataforma de apoyo psicoemocional.
Clasifica el mensaje del usuario y responde ÚNICAMENTE un objeto JSON con esta forma:
{"label": "POS|NEG|NEU", "negativity": 0.0}
donde negativity es la intensidad negativa del mensaje entre 0.0 y 1.0.
No añadas explicación ni texto adicional.`

const classifierUserPrompt = `Mensaje del usuario:
{text}`

// NewService 创建情感打分服务。chatModel 可复用生成服务的模型实例,为
// nil 时仅使用词典回退路径。
func NewService(ctx context.Context, chatModel model.ChatModel, cfg Config) (*Service, error) {
	svc := &Service{
		enabled:  cfg.Enabled && chatModel != nil,
		fallback: analysis.Analyze,
	}

	if !svc.enabled {
		return svc, nil
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(classifierSystemPrompt),
		schema.UserMessage(classifierUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile sentiment classifier chain: %w", err)
	}

	svc.classifier = runnable
	return svc, nil
}

// Enabled 返回是否启用了 LLM 分类路径。
func (s *Service) Enabled() bool {
	return s != nil && s.enabled && s.classifier != nil
}

// Score evaluates the emotional tone of a message. Identical input yields
// identical fallback results; the input text is never mutated.
func (s *Service) Score(ctx context.Context, text string) analysis.Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return analysis.Result{Label: analysis.Neutral, Score: 0}
	}

	if !s.Enabled() {
		return s.fallback(text)
	}

	msg, err := s.classifier.Invoke(ctx, map[string]any{"text": trimmed})
	if err != nil {
		log.Printf("[sentiment] classifier invoke failed, use fallback: %v", err)
		return s.fallback(text)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return s.fallback(text)
	}

	result, err := parseClassifierOutput(msg.Content)
	if err != nil {
		log.Printf("[sentiment] classifier output parse failed, use fallback: %v", err)
		return s.fallback(text)
	}

	return *result
}

type classifierPayload struct {
	Label      string  `json:"label"`
	Negativity float64 `json:"negativity"`
}

// parseClassifierOutput 解析大模型返回的 JSON,容忍额外的包裹文本。
func parseClassifierOutput(content string) (*analysis.Result, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &classifierPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}

	label, ok := parseLabel(payload.Label)
	if !ok {
		return nil, fmt.Errorf("unknown sentiment label %q", payload.Label)
	}

	score := payload.Negativity
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return &analysis.Result{Label: label, Score: score}, nil
}

func parseLabel(raw string) (analysis.Label, bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "POS":
		return analysis.Positive, true
	case "NEG":
		return analysis.Negative, true
	case "NEU":
		return analysis.Neutral, true
	default:
		return "", false
	}
}
