package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aura-plataforma/chatbot-service/internal/config"
	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/ai"
	chatService "github.com/aura-plataforma/chatbot-service/internal/service/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/profile"
	"github.com/aura-plataforma/chatbot-service/pkg/utils"
)

// Handler 聊天服务的HTTP处理器。
type Handler struct {
	chatSvc      *chatService.Service
	profiles     profile.Fetcher
	llmSentiment bool
}

// New 创建聊天处理器。
func New(chatSvc *chatService.Service, profiles profile.Fetcher, llmSentiment bool) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		profiles:     profiles,
		llmSentiment: llmSentiment,
	}
}

// RegisterRoutes 注册聊天相关的路由。
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/message", h.handleMessage)
	r.Get("/health", h.handleHealth)
	r.Get("/greeting", h.handleGreeting)
}

// handleMessage 处理一条用户消息并返回完整的响应信封。
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	var payload model.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.chatSvc.Handle(r.Context(), payload)
	if err != nil {
		if errors.Is(err, chatService.ErrInvalidInput) {
			utils.RespondError(w, http.StatusBadRequest, "user_id and a non-empty message are required")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

// handleHealth 报告服务及其依赖的状态。协作方不可达不会让端点失败。
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	hctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	clustering := "unavailable"
	if h.profiles.CheckHealth(hctx) {
		clustering = "available"
	}

	scorer := "lexicon"
	if h.llmSentiment {
		scorer = "llm+lexicon"
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": config.ServiceName,
		"version": config.Version,
		"dependencies": map[string]string{
			"clustering_service": clustering,
			"generator":          "configured",
			"sentiment_scorer":   scorer,
		},
	})
}

// handleGreeting 返回个性化的开场白,不经过分诊管线。
func (h *Handler) handleGreeting(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("user_name")

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"message":   ai.Greeting(name),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
