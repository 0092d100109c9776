package chat

import (
	"time"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
)

// MessageRequest 用户发送给聊天机器人的请求体。
type MessageRequest struct {
	UserID    string `json:"user_id"`
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Metadata 单条消息分析产生的元数据,响应中总是完整填充。
type Metadata struct {
	IntentDetected          risk.Intent     `json:"intent_detected"`
	RiskLevel               risk.Level      `json:"risk_level"`
	SentimentLabel          sentiment.Label `json:"sentiment_label"`
	NegativityScore         float64         `json:"negativity_score"`
	RequiresFollowUp        bool            `json:"requires_follow_up"`
	CrisisResourcesIncluded bool            `json:"crisis_resources_included"`
}

// MessageResponse 聊天机器人的最终响应,构造后不可变。
type MessageResponse struct {
	Message   string    `json:"message"`
	Metadata  Metadata  `json:"metadata"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchange persists a single request/response turn for audit/debug.
type Exchange struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	UserMessage string    `json:"userMessage"`
	Reply       string    `json:"reply"`
	Metadata    Metadata  `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}
