package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/schema"

	model "github.com/aura-plataforma/chatbot-service/internal/model/chat"
	"github.com/aura-plataforma/chatbot-service/internal/model/risk"
	"github.com/aura-plataforma/chatbot-service/internal/service/ai"
	chatService "github.com/aura-plataforma/chatbot-service/internal/service/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/triage"
	"github.com/aura-plataforma/chatbot-service/pkg/utils"
)

// Streamer produces reply chunks for non-crisis requests.
type Streamer interface {
	Stream(ctx context.Context, req ai.Request) (*schema.StreamReader[*schema.Message], error)
}

// Handler streams triaged replies via Server-Sent Events. The crisis gate
// runs before any streaming starts: bypassed requests receive the fixed
// payload as a single chunk and never touch the generator.
type Handler struct {
	streamer Streamer
	chatSvc  *chatService.Service
}

// New creates a stream handler.
func New(streamer Streamer, chatSvc *chatService.Service) *Handler {
	return &Handler{streamer: streamer, chatSvc: chatSvc}
}

// Chunk is one streaming response frame.
type Chunk struct {
	Event     string          `json:"event"`
	Content   string          `json:"content,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Metadata  *model.Metadata `json:"metadata,omitempty"`
	Finished  bool            `json:"finished,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// HandleStreamRequest evaluates the request and streams the reply. Invalid
// input is reported before any SSE output; later failures degrade to the
// fallback message inside the stream.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, req model.MessageRequest) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	eval, err := h.chatSvc.Evaluate(ctx, req)
	if err != nil {
		return err
	}

	utils.SetupSSEHeaders(w)

	h.send(w, flusher, Chunk{Event: "start", SessionID: req.SessionID})

	var resp model.MessageResponse
	if eval.Outcome == triage.OutcomeBypass {
		resp = h.bypass(w, flusher, req, eval)
	} else {
		resp = h.stream(ctx, w, flusher, req, eval)
	}

	metadata := resp.Metadata
	h.send(w, flusher, Chunk{Event: "done", SessionID: req.SessionID, Metadata: &metadata, Finished: true})

	h.chatSvc.Record(req, resp)
	return nil
}

func (h *Handler) bypass(w http.ResponseWriter, flusher http.Flusher, req model.MessageRequest, eval chatService.Evaluation) model.MessageResponse {
	log.Printf("[stream] crisis bypass engaged for session=%s", req.SessionID)

	message := triage.CrisisMessage()
	h.send(w, flusher, Chunk{Event: "message", Content: message, SessionID: req.SessionID})

	metadata := eval.Metadata()
	metadata.IntentDetected = risk.IntentCrisis
	metadata.RiskLevel = risk.LevelAlto
	metadata.RequiresFollowUp = true
	metadata.CrisisResourcesIncluded = true

	return model.MessageResponse{Message: message, Metadata: metadata}
}

func (h *Handler) stream(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, req model.MessageRequest, eval chatService.Evaluation) model.MessageResponse {
	metadata := eval.Metadata()

	reader, err := h.streamer.Stream(ctx, h.chatSvc.GenerationRequest(req, eval))
	if err != nil {
		log.Printf("[stream] generation failed for session=%s, using fallback: %v", req.SessionID, err)
		return h.fallback(w, flusher, req, metadata)
	}
	defer reader.Close()

	var full strings.Builder
	for {
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Printf("[stream] stream interrupted for session=%s: %v", req.SessionID, err)
			if full.Len() == 0 {
				return h.fallback(w, flusher, req, metadata)
			}
			break
		}
		if chunk == nil || chunk.Content == "" {
			continue
		}

		full.WriteString(chunk.Content)
		h.send(w, flusher, Chunk{Event: "message", Content: chunk.Content, SessionID: req.SessionID})
	}

	if strings.TrimSpace(full.String()) == "" {
		return h.fallback(w, flusher, req, metadata)
	}

	return model.MessageResponse{Message: full.String(), Metadata: metadata}
}

func (h *Handler) fallback(w http.ResponseWriter, flusher http.Flusher, req model.MessageRequest, metadata model.Metadata) model.MessageResponse {
	metadata.RequiresFollowUp = true
	h.send(w, flusher, Chunk{Event: "message", Content: triage.FallbackMessage, SessionID: req.SessionID})
	return model.MessageResponse{Message: triage.FallbackMessage, Metadata: metadata}
}

func (h *Handler) send(w http.ResponseWriter, flusher http.Flusher, chunk Chunk) {
	utils.SendSSEChunk(w, flusher, chunk)
}
