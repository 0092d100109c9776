package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/intent"
	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
	"github.com/aura-plataforma/chatbot-service/internal/service/ai"
	chatService "github.com/aura-plataforma/chatbot-service/internal/service/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/profile"
	sentimentService "github.com/aura-plataforma/chatbot-service/internal/service/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/service/triage"
)

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, req ai.Request) (string, error) {
	s.calls++
	return s.reply, s.err
}

func setupRouter(t *testing.T, generator *stubGenerator) *chi.Mux {
	t.Helper()

	scorer, err := sentimentService.NewService(context.Background(), nil, sentimentService.Config{})
	if err != nil {
		t.Fatalf("sentiment service err: %v", err)
	}

	chatSvc := chatService.NewService(
		scorer,
		intent.NewClassifier(),
		profile.Noop{},
		generator,
		triage.NewAssessor(0.75, 0.4),
	)
	handler := New(chatSvc, profile.Noop{}, false)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postMessage(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestHandleMessageSupport(t *testing.T) {
	generator := &stubGenerator{reply: "Entiendo cómo te sientes. Estoy aquí contigo."}
	r := setupRouter(t, generator)

	resp := postMessage(t, r, model.MessageRequest{
		UserID:  "user-1",
		Message: "Me siento muy triste y necesito ayuda",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body model.MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Message != generator.reply {
		t.Fatalf("unexpected reply: %q", body.Message)
	}
	if body.Metadata.IntentDetected != risk.IntentSupport {
		t.Fatalf("expected support intent, got %s", body.Metadata.IntentDetected)
	}
	if body.Metadata.CrisisResourcesIncluded {
		t.Fatal("support reply must not flag crisis resources")
	}
	if body.Timestamp.IsZero() {
		t.Fatal("response must carry a timestamp")
	}
}

func TestHandleMessageCrisisNeverGenerates(t *testing.T) {
	generator := &stubGenerator{reply: "should never be used"}
	r := setupRouter(t, generator)

	resp := postMessage(t, r, model.MessageRequest{
		UserID:  "user-1",
		Message: "quiero quitarme la vida",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if generator.calls != 0 {
		t.Fatalf("generator invoked %d times on a crisis message", generator.calls)
	}

	var body model.MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if !body.Metadata.CrisisResourcesIncluded {
		t.Fatal("crisis reply must include resources")
	}
	if body.Metadata.RiskLevel != risk.LevelAlto || body.Metadata.IntentDetected != risk.IntentCrisis {
		t.Fatalf("crisis metadata inconsistent: %+v", body.Metadata)
	}
}

func TestHandleMessageGeneratorFailureStillResponds(t *testing.T) {
	generator := &stubGenerator{err: errors.New("upstream down")}
	r := setupRouter(t, generator)

	resp := postMessage(t, r, model.MessageRequest{
		UserID:  "user-1",
		Message: "¿Cómo funciona la plataforma?",
	})

	if resp.Code != http.StatusOK {
		t.Fatalf("degraded replies are still 200, got %d", resp.Code)
	}

	var body model.MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Message != triage.FallbackMessage {
		t.Fatalf("expected fallback reply, got %q", body.Message)
	}
}

func TestHandleMessageEmptyMessage(t *testing.T) {
	r := setupRouter(t, &stubGenerator{reply: "hola"})

	resp := postMessage(t, r, model.MessageRequest{UserID: "user-1", Message: "   "})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandleMessageMalformedBody(t *testing.T) {
	r := setupRouter(t, &stubGenerator{reply: "hola"})

	req := httptest.NewRequest(http.MethodPost, "/message", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	r := setupRouter(t, &stubGenerator{reply: "hola"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Status       string            `json:"status"`
		Service      string            `json:"service"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Status != "healthy" {
		t.Fatalf("expected healthy status, got %q", body.Status)
	}
	if body.Dependencies["clustering_service"] != "unavailable" {
		t.Fatalf("noop fetcher must report unavailable, got %q", body.Dependencies["clustering_service"])
	}
	if body.Dependencies["sentiment_scorer"] != "lexicon" {
		t.Fatalf("expected lexicon scorer, got %q", body.Dependencies["sentiment_scorer"])
	}
}

func TestHandleGreeting(t *testing.T) {
	r := setupRouter(t, &stubGenerator{reply: "hola"})

	req := httptest.NewRequest(http.MethodGet, "/greeting?user_name=Ana", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Message == "" {
		t.Fatal("greeting must not be empty")
	}
	if body.Timestamp == "" {
		t.Fatal("greeting must carry a timestamp")
	}
}
