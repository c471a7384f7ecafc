package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeffcav/english-teacher-ai/internal/bot"
	"github.com/jeffcav/english-teacher-ai/internal/config"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	cfg := config.Load()
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data dir: %v", err)
	}
	sessions, err := bot.NewSessionMap(bot.DefaultSessionMapPath(cfg.DataDir))
	if err != nil {
		log.Fatalf("failed to load session map: %v", err)
	}

	client := bot.NewClient(cfg.BackendURL)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Healthcheck(ctx); err != nil {
		log.Printf("warning: backend healthcheck failed: %v", err)
	}

	b, err := bot.New(cfg.TelegramBotToken, client, sessions)
	if err != nil {
		log.Fatalf("failed to start bot: %v", err)
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("shutting down...")
		cancel()
	}()

	if err := b.Run(ctx); err != nil {
		log.Fatalf("bot error: %v", err)
	}
	log.Println("bot stopped")
}
