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

	"github.com/onboardly/voice-twin/backend/internal/config"
	"github.com/onboardly/voice-twin/backend/internal/handler"
	onboardinghandler "github.com/onboardly/voice-twin/backend/internal/handler/onboarding"
	"github.com/onboardly/voice-twin/backend/internal/llm"
	speechmodel "github.com/onboardly/voice-twin/backend/internal/model/speech"
	"github.com/onboardly/voice-twin/backend/internal/prompt"
	"github.com/onboardly/voice-twin/backend/internal/service/extract"
	"github.com/onboardly/voice-twin/backend/internal/service/onboarding"
	speechservice "github.com/onboardly/voice-twin/backend/internal/service/speech"
	"github.com/onboardly/voice-twin/backend/internal/storage"
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

	completer, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		log.Fatalf("failed to initialize completion client: %v", err)
	}
	log.Printf("completion client ready (provider=%s model=%s)", cfg.LLM.Provider, cfg.LLM.Model)

	systemPrompt, err := prompt.LoadSystemPrompt(cfg.Prompts.SystemPromptPath)
	if err != nil {
		log.Fatalf("failed to load system prompt: %v", err)
	}

	humor, err := prompt.LoadHumorTemplates(cfg.Prompts.HumorTemplatesPath)
	if err != nil {
		log.Printf("warning: humor templates unavailable: %v", err)
	}

	questions, err := prompt.LoadQuestionBank(cfg.Prompts.QuestionBankPath)
	if err != nil {
		log.Printf("warning: question bank unavailable: %v", err)
		questions = nil
	}

	artifacts, err := storage.NewArtifactStore(cfg.Storage.TranscriptDir, cfg.Storage.PersonaDir)
	if err != nil {
		log.Fatalf("failed to initialize artifact store: %v", err)
	}

	index, err := storage.OpenSessionIndex(cfg.Storage.DBPath)
	if err != nil {
		log.Printf("warning: session index unavailable: %v", err)
		index = nil
	} else {
		defer index.Close()
	}

	// Initialize voice stack
	var voice *speechservice.Service
	if cfg.Speech.Enabled {
		voice = speechservice.NewService(&speechmodel.Config{
			AppID:         cfg.Speech.AppID,
			AccessToken:   cfg.Speech.AccessToken,
			BaseURL:       cfg.Speech.BaseURL,
			ASRModel:      cfg.Speech.ASRModel,
			ASRLanguage:   cfg.Speech.ASRLanguage,
			TTSVoice:      cfg.Speech.TTSVoice,
			TTSSpeed:      cfg.Speech.TTSSpeed,
			TTSVolume:     cfg.Speech.TTSVolume,
			TTSLanguage:   cfg.Speech.TTSLanguage,
			RecordCommand: cfg.Speech.RecordCommand,
			PlayCommand:   cfg.Speech.PlayCommand,
			SampleRate:    cfg.Speech.SampleRate,
			Timeout:       cfg.Speech.Timeout,
		})
		log.Println("speech service initialized successfully")
	} else {
		log.Println("speech gateway credentials not configured, sessions cannot be started")
	}

	builder := prompt.NewBuilder(systemPrompt, humor)
	extractor := extract.New(completer)
	registry := onboarding.NewRegistry()

	var indexer onboarding.SessionIndexer
	var lister onboardinghandler.SessionLister
	if index != nil {
		indexer = index
		lister = index
	}

	var factory onboardinghandler.SessionFactory
	if voice != nil {
		factory = func() *onboarding.Session {
			return onboarding.NewSession(onboarding.Deps{
				Config:    cfg.Session,
				Voice:     voice,
				Completer: completer,
				Builder:   extractor,
				Prompts:   builder,
				Questions: questions,
				Artifacts: artifacts,
				Index:     indexer,
			})
		}
	}

	onboardingHandler := onboardinghandler.New(registry, factory, artifacts, lister)
	router := handler.NewRouter(onboardingHandler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("voice onboarding backend listening on %s", serverCfg.Addr)
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
