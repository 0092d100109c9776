package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/aura-plataforma/chatbot-service/internal/analysis/intent"
	"github.com/aura-plataforma/chatbot-service/internal/config"
	"github.com/aura-plataforma/chatbot-service/internal/handler"
	aiService "github.com/aura-plataforma/chatbot-service/internal/service/ai"
	chatService "github.com/aura-plataforma/chatbot-service/internal/service/chat"
	"github.com/aura-plataforma/chatbot-service/internal/service/profile"
	sentimentService "github.com/aura-plataforma/chatbot-service/internal/service/sentiment"
	"github.com/aura-plataforma/chatbot-service/internal/service/triage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The generator credential is mandatory; without it the service cannot
	// fulfil its contract, so a broken AI setup fails startup.
	aiSvc, err := aiService.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generator service: %v", err)
	}
	log.Println("generator service initialized successfully")

	// Sentiment scorer: optional LLM classifier on top of the lexicon
	// fallback, reusing the generator's chat model.
	scorerCfg := sentimentService.Config{Enabled: cfg.AI.SentimentLLMEnabled}
	scorer, err := sentimentService.NewService(ctx, aiSvc.GetChatModel(), scorerCfg)
	if err != nil {
		log.Printf("warning: failed to initialize LLM sentiment classifier: %v", err)
		log.Println("continuing with lexicon-only sentiment scoring")
		scorer, _ = sentimentService.NewService(ctx, nil, sentimentService.Config{})
	} else if scorer.Enabled() {
		log.Println("LLM sentiment classifier enabled")
	} else {
		log.Println("sentiment scoring in lexicon-only mode")
	}

	var profiles profile.Fetcher
	if cfg.Clustering.Enabled() {
		profiles = profile.NewClient(cfg.Clustering.BaseURL, cfg.Clustering.Timeout)
		log.Printf("clustering service configured at %s", cfg.Clustering.BaseURL)
	} else {
		profiles = profile.Noop{}
		log.Println("clustering service not configured, continuing without historical profiles")
	}

	classifier := intent.NewClassifier(intent.WithSupportThreshold(cfg.Triage.SupportThreshold))
	assessor := triage.NewAssessor(cfg.Triage.HighThreshold, cfg.Triage.ModerateThreshold)

	chatSvc := chatService.NewService(scorer, classifier, profiles, aiSvc, assessor)

	router := handler.NewRouter(chatSvc, aiSvc, profiles, scorer.Enabled())

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("AURA chatbot backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
