package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lumichat/otp-api/internal/config"
	transporthttp "github.com/lumichat/otp-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	slog.SetDefault(newLogger(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, closeAll, err := buildDeps(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer closeAll()

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(appCtx, cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, otp_mode=%s, user_store=%s)", cfg.AppPort, cfg.AppEnv, cfg.OTPMode, cfg.UserStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopApp()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
		return
	}
	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.AppEnv == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
