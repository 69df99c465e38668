package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"github.com/shortrest/tavernbot/internal/bot"
	"github.com/shortrest/tavernbot/internal/logger"
	"github.com/shortrest/tavernbot/internal/schedule"
	"github.com/shortrest/tavernbot/internal/store"
)

func main() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetDefault("data.dir", "./data")
	viper.SetDefault("trigger.hour", 7)
	viper.SetDefault("trigger.minute", 0)

	if err := logger.Setup(viper.GetString("log.file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %s\n", err.Error())
	}
	defer func() {
		if err := logger.Close(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error closing logger: %s\n", err.Error())
		}
	}()

	token := viper.GetString("telegram.token")
	ownerHandle := viper.GetString("owner.handle")
	ownerID := viper.GetInt64("owner.id")
	if token == "" || ownerHandle == "" || ownerID == 0 {
		logger.Err().Print("TELEGRAM_TOKEN, OWNER_HANDLE and OWNER_ID must be set in the environment to run this process")
		os.Exit(1)
	}

	dataDir := viper.GetString("data.dir")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logger.Err().Printf("Failed to create data directory %s: %v", dataDir, err)
		os.Exit(1)
	}

	admins, err := store.NewAdminStore(filepath.Join(dataDir, "admins.json"), ownerHandle, ownerID)
	if err != nil {
		logger.Err().Printf("Admin store degraded to defaults: %v", err)
	}
	polls, err := store.NewPollStore(filepath.Join(dataDir, "polls.json"))
	if err != nil {
		logger.Err().Printf("Poll store degraded to empty: %v", err)
	}

	logger.Out().Println("Starting Telegram bot...")
	b, err := bot.New(bot.Config{Token: token}, polls, admins)
	if err != nil {
		logger.Err().Printf("Failed to initialize bot: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := schedule.New(polls, b, viper.GetInt("trigger.hour"), viper.GetInt("trigger.minute"))
	go sched.Run(ctx)

	go func() {
		sc := make(chan os.Signal, 1)
		signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
		<-sc
		logger.Out().Println("Shutting down")
		cancel()
		b.Stop()
	}()

	logger.Out().Println("Bot is running. Press Ctrl+C to stop.")
	if err := b.Run(); err != nil {
		logger.Err().Printf("Bot error: %v", err)
		os.Exit(1)
	}
}
