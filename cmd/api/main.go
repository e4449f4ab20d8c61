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

	"github.com/mindhaven/backend/internal/config"
	"github.com/mindhaven/backend/internal/handler"
	"github.com/mindhaven/backend/internal/service/ai"
	"github.com/mindhaven/backend/internal/service/coach"
	"github.com/mindhaven/backend/internal/service/mood"
	"github.com/mindhaven/backend/internal/service/rewards"
	"github.com/mindhaven/backend/internal/store"
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

	var st store.Store
	if cfg.Store.InMemory() {
		st = store.NewMemory()
		log.Println("using in-memory store; state will not survive a restart")
	} else {
		sqliteStore, err := store.OpenSQLite(cfg.Store.DatabasePath)
		if err != nil {
			log.Fatalf("failed to open store at %s: %v", cfg.Store.DatabasePath, err)
		}
		defer sqliteStore.Close()
		st = sqliteStore
		log.Printf("store opened at %s", cfg.Store.DatabasePath)
	}

	// The generator variant is chosen once here; the orchestrator only ever
	// sees the TextGenerator interface.
	fallback := ai.NewRuleBasedGenerator()
	var generator ai.TextGenerator = fallback
	if cfg.AI.Enabled() {
		remote, err := ai.NewRemoteGenerator(ctx, cfg.AI, fallback)
		if err != nil {
			log.Printf("warning: failed to initialize remote generator: %v", err)
			log.Println("continuing with rule-based responses only")
		} else {
			generator = remote
			log.Println("remote generation enabled")
		}
	} else {
		log.Println("model credentials not configured, coaching replies are rule-based")
	}

	coachSvc := coach.NewService(st, generator)
	moodSvc := mood.NewService(st)
	rewardsSvc := rewards.NewService(st)

	router := handler.NewRouter(coachSvc, moodSvc, rewardsSvc)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MindHaven backend listening on %s", serverCfg.Addr)
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
