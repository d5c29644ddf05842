package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	geminiadapter "github.com/ericfisherdev/anonbox/internal/adapter/driven/gemini"
	sqliteadapter "github.com/ericfisherdev/anonbox/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/anonbox/internal/adapter/driving/http"
	"github.com/ericfisherdev/anonbox/internal/application"
	"github.com/ericfisherdev/anonbox/internal/auth"
	"github.com/ericfisherdev/anonbox/internal/config"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"token_ttl", cfg.TokenTTL,
		"verifier", cfg.Verifier,
		"gemini_model", cfg.GeminiModel,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Wire adapters.
	accountStore := sqliteadapter.NewAccountRepo(db)
	inboxStore := sqliteadapter.NewInboxRepo(db)
	issuer := auth.NewIssuer(cfg.SecretKey, cfg.TokenTTL)

	// 6. Create the text generator (nil if no API key is configured).
	var generator driven.TextGenerator
	if cfg.HasGeminiCredentials() {
		generator = geminiadapter.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL)
		logger.Info("gemini client created", "model", cfg.GeminiModel)
	} else {
		logger.Info("no gemini api key configured, serving default suggestions")
	}

	// 7. Create application services.
	directory := application.NewDirectory(accountStore)
	gate := application.NewAcceptanceGate(directory, accountStore, logger)
	intakeSvc := application.NewIntakeService(directory, gate, inboxStore, logger)
	inboxSvc := application.NewInboxService(inboxStore)
	suggestionSvc := application.NewSuggestionService(generator, cfg.SuggestTimeout, logger)
	accountSvc := application.NewAccountService(accountStore, application.ImmediateVerifier{}, issuer, bcrypt.DefaultCost, logger)

	// 8. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(accountSvc, directory, gate, intakeSvc, inboxSvc, suggestionSvc, issuer, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("anonbox started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	logger.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// newLogger builds the process logger in the configured format.
func newLogger(format string) *slog.Logger {
	if format == config.LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
