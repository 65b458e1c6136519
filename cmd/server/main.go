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

	"github.com/KareemHossny/Ghalya-BackEnd/internal/auth"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/config"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/handlers"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/images"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/orders"
	"github.com/KareemHossny/Ghalya-BackEnd/internal/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog as early as possible once the level and format are known.
	handlerOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var logHandler slog.Handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	if cfg.LogFormat == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))

	// 2. Init DB
	db, err := store.NewStore(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run Migrations
	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Auth and image storage
	authenticator, err := auth.New(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminPassword, cfg.JWTSecret)
	if err != nil {
		slog.Error("Failed to initialize admin auth", "error", err)
		os.Exit(1)
	}

	imageStore, err := images.New(cfg.ImageBackend, images.Options{
		MaxBytes:  cfg.ImageMaxBytes,
		UploadDir: cfg.UploadDir,
		URLPrefix: "/uploads/",
		RemoteURL: cfg.ImageRemoteURL,
		RemoteKey: cfg.ImageRemoteKey,
	})
	if err != nil {
		slog.Error("Failed to initialize image store", "backend", cfg.ImageBackend, "error", err)
		os.Exit(1)
	}

	uploadDir := ""
	if cfg.ImageBackend == images.BackendDisk {
		uploadDir = cfg.UploadDir
	}

	// 4. Setup Handlers
	handler := handlers.NewRouter(handlers.RouterConfig{
		Store:         db,
		Engine:        orders.NewEngine(db),
		Auth:          authenticator,
		Images:        imageStore,
		MaxImageBytes: cfg.ImageMaxBytes,
		UploadDir:     uploadDir,
		CORSOrigins:   cfg.CORSOrigins,
	})

	// 5. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create a channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "db_driver", db.Driver(), "image_backend", cfg.ImageBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
