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

	"github.com/zhouzirui/padel-assistant/backend/internal/config"
	"github.com/zhouzirui/padel-assistant/backend/internal/handler"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	"github.com/zhouzirui/padel-assistant/backend/internal/service/ai"
	"github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/service/responder"
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

	profileStore, err := profile.OpenStore(cfg.Assistant.ProfilesFile)
	if err != nil {
		log.Fatalf("failed to load assistant profiles: %v", err)
	}
	log.Printf("loaded %d assistant profiles", len(profileStore.List()))

	// Initialize AI service
	var aiService *ai.Service
	if cfg.AI.Enabled() && len(cfg.Assistant.LLMProfiles) > 0 {
		aiService, err = ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing with scripted replies - 请检查 Ark 模型相关环境变量")
			aiService = nil
		} else {
			log.Printf("AI service initialized for profiles %v", cfg.Assistant.LLMProfiles)
		}
	} else {
		log.Println("Ark 凭证未配置或未指定 ASSISTANT_LLM_PROFILES，使用脚本化回复")
	}

	factory := responder.NewFactory(cfg.Assistant, aiService)
	chatService := chat.NewService(profileStore, factory.Build,
		chat.WithDispatchTimeout(cfg.Assistant.DispatchTimeout))
	defer chatService.Shutdown()

	router := handler.NewRouter(profileStore, chatService)

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

	log.Printf("Padel assistant backend listening on %s", addr)
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
