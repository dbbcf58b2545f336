package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/morningistar/study-buddy/internal/config"
	"github.com/morningistar/study-buddy/internal/handler"
	"github.com/morningistar/study-buddy/internal/model/study"
	"github.com/morningistar/study-buddy/internal/realtime"
	"github.com/morningistar/study-buddy/internal/service/ai"
	authservice "github.com/morningistar/study-buddy/internal/service/auth"
	chatservice "github.com/morningistar/study-buddy/internal/service/chat"
	"github.com/morningistar/study-buddy/internal/service/generate"
	"github.com/morningistar/study-buddy/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load .env file; absence is fine in deployed environments.
	if err := godotenv.Load(); err != nil {
		logger.Info("no .env file loaded, using system environment", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := store.NewSQLite(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database",
			zap.Error(err),
			zap.String("dbPath", cfg.Database.Path))
	}
	defer db.Close()

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)

	authSvc := authservice.NewService(db, cfg.Auth.TokenTTL, logger)

	// The chat service and the worker pool reference each other: the service
	// schedules jobs on the pool, the pool reads transcripts and appends
	// replies through the service. Build the service first and hand it the
	// pool once both exist.
	chatSvc := chatservice.NewService(db, nil, hub, logger)

	var pool *generate.Pool
	if cfg.AI.Enabled() {
		completer, err := ai.NewClient(cfg.AI, logger)
		if err != nil {
			logger.Fatal("failed to initialize completion client", zap.Error(err))
		}
		pool = generate.NewPool(chatSvc, completer, cfg.Generate.Workers, cfg.Generate.QueueSize, logger)
		pool.Start(ctx)
		chatSvc.SetScheduler(pool)
		logger.Info("reply generation enabled",
			zap.Int("workers", cfg.Generate.Workers),
			zap.String("model", cfg.AI.Model))
	} else {
		logger.Warn("OPENAI_API_KEY not set, assistant replies are disabled")
	}

	router := handler.NewRouter(handler.Deps{
		AuthService:   authSvc,
		ChatService:   chatSvc,
		StudyContent:  study.NewMemoryStore(study.SeedTips(), study.SeedResources()),
		Hub:           hub,
		Conversations: db,
		Logger:        logger,
	})

	startServer(ctx, cfg.Server, router, logger)

	if pool != nil {
		pool.Wait()
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("study buddy backend listening", zap.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
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
