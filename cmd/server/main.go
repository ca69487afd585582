package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"folio/internal/app"
	"folio/internal/auth"
	"folio/internal/config"
	"folio/internal/handler"
	"folio/internal/middleware"
	"folio/internal/service/content"
	"folio/internal/service/content/assets"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, closeLog, err := app.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"files_dir", cfg.FilesDir,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialise: %v", err)
	}
	defer a.Close()

	// Services
	contentService := content.NewContentService(a.Contents, a.Processor, a.Tracker, a.TxManager, logger)
	fileService := assets.NewFileService(a.Assets, a.Files, logger)

	// Handlers
	var db handler.Pinger
	if a.Pool != nil {
		db = a.Pool
	}
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux,
		handler.NewHealthHandler(db, logger),
		handler.NewContentHandler(contentService, logger),
		handler.NewAssetHandler(fileService, logger),
	)

	logger.Info("services initialized")

	// Order: CORS → Recovery → Auth → Routes
	var h http.Handler = mux

	if cfg.AuthDisabled {
		logger.Warn("AUTH DISABLED: all requests act as the dev user (NEVER use in production!)",
			"dev_user_id", cfg.DevUserID)
		h = middleware.DevAuthMiddleware(cfg.DevUserID)(h)
	} else {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()
		h = middleware.AuthMiddleware(jwtVerifier, logger)(h)
	}

	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
