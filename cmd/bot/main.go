package main

import (
	"context"
	"log"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/agent"
	"github.com/reyarovenko/iMeal/internal/ai"
	"github.com/reyarovenko/iMeal/internal/bot"
	"github.com/reyarovenko/iMeal/internal/bus"
	"github.com/reyarovenko/iMeal/internal/config"
	"github.com/reyarovenko/iMeal/internal/database"
	"github.com/reyarovenko/iMeal/internal/logger"
	"github.com/reyarovenko/iMeal/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.New(cfg.LogFilePath, cfg.Environment == "production")
	defer zlog.Sync()

	db, err := database.New(cfg.DatabasePath, cfg.RateLimitPerMinute)
	if err != nil {
		zlog.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	entries := storage.NewEntryStore(filepath.Join(cfg.DataDir, "nutrition_data.json"))
	profiles := storage.NewProfileStore(filepath.Join(cfg.DataDir, "profiles.json"))

	agentBus := bus.New(zlog)
	defer agentBus.Close()

	var completer ai.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = ai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, zlog)
	} else {
		zlog.Warn("OPENAI_API_KEY not set, running with basic advice only")
	}
	nutritionist := ai.NewNutritionist(completer, zlog)

	analyst := agent.NewAnalyst(agentBus, entries, nutritionist, zlog)
	dietitian := agent.NewDietitian(agentBus, profiles, entries, nutritionist, zlog)
	coordinator, err := agent.NewCoordinator(agentBus, analyst, dietitian, zlog)
	if err != nil {
		zlog.Fatal("start coordinator", zap.Error(err))
	}

	transport, err := bot.NewTelegramTransport(cfg.TelegramToken, zlog)
	if err != nil {
		zlog.Fatal("connect to telegram", zap.Error(err))
	}

	handler := bot.NewHandler(bot.NewSessionStore(), coordinator, db, transport, zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Info("bot started")
	transport.Listen(ctx, handler)
	zlog.Info("bot stopped")
}
