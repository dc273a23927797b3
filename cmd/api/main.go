package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maximzayviy-pixel/tgwallet/config"
	"github.com/maximzayviy-pixel/tgwallet/db"
	"github.com/maximzayviy-pixel/tgwallet/internal/bot"
	"github.com/maximzayviy-pixel/tgwallet/internal/queue"
	"github.com/maximzayviy-pixel/tgwallet/internal/repository"
	"github.com/maximzayviy-pixel/tgwallet/internal/server"
	"github.com/maximzayviy-pixel/tgwallet/internal/service"
	"github.com/maximzayviy-pixel/tgwallet/utils"
	"github.com/maximzayviy-pixel/tgwallet/utils/email"
	"github.com/robfig/cron/v3"
)

func main() {
	logger := utils.InitLogger()
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	database, err := db.ConnectDb(cfg.DB_URL, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if err := db.Migrate(database, true, logger); err != nil {
		logger.Fatal(err)
	}

	repo := repository.NewRepository(database, logger)
	mailer := email.NewSender(&cfg, logger)

	tasks := queue.NewQueue(logger, 4, 256)
	tasks.Start()

	svc := service.NewService(repo, &cfg, mailer, tasks, logger)

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal("Failed to create bot API: ", err)
	}
	telegramBot := bot.NewBot(botAPI, svc, cfg.AdminChatID, logger)

	// Sweep overdue payment links once a minute.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		expired, err := svc.ExpireOverdueLinks(ctx)
		if err != nil {
			logger.Errorf("Failed to expire payment links: %v", err)
			return
		}
		if expired > 0 {
			logger.Infof("Expired %d payment links", expired)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule link expiry: ", err)
	}
	scheduler.Start()

	srv := server.NewServer(svc, telegramBot, tasks, &cfg, logger)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("🚀 Starting server on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed: ", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Server shutdown: %v", err)
	}
	scheduler.Stop()
	tasks.Stop()
	logger.Info("Bye")
}
