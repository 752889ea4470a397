package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"twobot/internal/api"
	"twobot/internal/biz/usecase"
	"twobot/internal/conf"
	"twobot/internal/data"
	"twobot/internal/infra/feishu"
	"twobot/internal/server"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize Feishu client and repositories
	feishuClient := feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret)
	channels, profileRepo := data.NewFeishuRepo(feishuClient, cfg.Feishu.SendRPS, cfg.Feishu.LookupRPS)
	gateway := data.NewFeishuGateway(feishuClient)

	counters, err := data.NewCounterStore(cfg.Bot.DataPath)
	if err != nil {
		log.Fatalf("Failed to open counter store: %v", err)
	}
	fmt.Printf("[Main] Counter data file: %s\n", cfg.Bot.DataPath)

	// Initialize usecase layer
	profiles := usecase.NewProfileUsecase(profileRepo, cfg.Bot.ProfileTTL())
	trigger := usecase.NewTriggerUsecase(counters, profiles, channels, usecase.TriggerConfig{
		Keyword:  cfg.Bot.Keyword,
		Cooldown: cfg.Bot.Cooldown(),
	})
	command := usecase.NewCommandUsecase(counters, profiles, channels, usecase.CommandConfig{
		Prefix:          cfg.Bot.CommandPrefix,
		LeaderboardSize: cfg.Bot.LeaderboardSize,
	})

	// Start the read-only query API
	apiServer := api.NewServer(counters, profiles, cfg.API.Addr)
	go func() {
		if err := apiServer.Start(); err != nil {
			fmt.Printf("[Main] API server error: %v\n", err)
		}
	}()

	// Initialize the bot
	bot := server.NewBot(gateway, channels, profiles, trigger, command, server.BotConfig{
		Keyword:       cfg.Bot.Keyword,
		CommandPrefix: cfg.Bot.CommandPrefix,
		RelayBotID:    cfg.Bot.RelayBotID,
	})

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		bot.Stop()
		apiServer.Stop()
		os.Exit(0)
	}()

	fmt.Printf("Starting two-bot (keyword: %q, command prefix: %q)...\n", cfg.Bot.Keyword, cfg.Bot.CommandPrefix)
	if err := bot.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}
