package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aura-plataforma/chatbot-service/internal/config"
	chatHandler "github.com/aura-plataforma/chatbot-service/internal/handler/chat"
	"github.com/aura-plataforma/chatbot-service/internal/handler/stream"
	middlewarePkg "github.com/aura-plataforma/chatbot-service/internal/middleware"
	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
	chatService "github.com/aura-plataforma/chatbot-service/internal/service/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/profile"
	"github.com/aura-plataforma/chatbot-service/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, streamer stream.Streamer, profiles profile.Fetcher, llmSentiment bool) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	handler := chatHandler.New(chatSvc, profiles, llmSentiment)
	streamHandler := stream.New(streamer, chatSvc)

	r.Route("/api/v1/chat", func(api chi.Router) {
		handler.RegisterRoutes(api)

		// SSE 流式回复,与 POST /message 走同一条分诊管线。
		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			req := model.MessageRequest{
				SessionID: chi.URLParam(r, "sessionID"),
				UserID:    r.URL.Query().Get("user_id"),
				Message:   r.URL.Query().Get("message"),
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, req); err != nil {
				if errors.Is(err, chatService.ErrInvalidInput) {
					utils.RespondError(w, http.StatusBadRequest, "user_id and message query parameters are required")
					return
				}
				log.Printf("[stream] error handling request: %v", err)
				utils.RespondError(w, http.StatusInternalServerError, "streaming failed")
			}
		})
	})

	// 根路径返回服务卡片,/health 作为纯存活探针。
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"service":     config.ServiceName,
			"version":     config.Version,
			"description": "AURA Chatbot - Asistente de Apoyo Psicoemocional",
			"endpoints": map[string]string{
				"chat":     "/api/v1/chat/message",
				"health":   "/api/v1/chat/health",
				"greeting": "/api/v1/chat/greeting",
			},
		})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	return r
}
