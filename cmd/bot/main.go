package main

import (
	"context"
	"errors"
	"field-sales-bot/internal/api"
	"field-sales-bot/internal/config"
	"field-sales-bot/internal/handler"
	"field-sales-bot/internal/repository"
	"field-sales-bot/internal/scheduling"
	"field-sales-bot/internal/service"
	"field-sales-bot/pkg/telegram"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	logrus.Info("Initializing config...")
	cfg := config.GetBotConfig()
	logrus.Info("Config initialized...")

	logger := newLogger(cfg.LogLevel)

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseURL), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance:", err)
	}

	if _, err = sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		logger.Warnf("Failed to enable foreign keys: %v", err)
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create user repository")
	}
	leadRepo, err := repository.NewGormLeadRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create lead repository")
	}
	leaveRepo, err := repository.NewGormLeaveRepository(db)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create leave repository")
	}
	visitRepo, err := repository.NewGormVisitRepository(db, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create visit repository")
	}

	userService := service.NewUserService(userRepo, logger)
	leadService := service.NewLeadService(leadRepo, time.Duration(cfg.NeglectAfterDays)*24*time.Hour, logger)
	leaveService := service.NewLeaveService(leaveRepo, userRepo, logger)
	visitService := service.NewVisitService(
		visitRepo,
		leadRepo,
		leaveRepo,
		userRepo,
		scheduling.NewScheduler(cfg.Rules()),
		cfg.HorizonDays,
		logger,
	)

	if err := userService.InitializeAdmin(cfg.BaseAdminChatID); err != nil {
		logger.Warnf("Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logger.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	if cfg.ClosuresFile != "" {
		n, err := leaveService.LoadClosures(cfg.ClosuresFile)
		if err != nil {
			logger.WithError(err).Warn("Failed to load office closures")
		} else {
			logger.Infof("Loaded %d office closures from %s", n, cfg.ClosuresFile)
		}
	}

	var server *http.Server
	if cfg.HTTPAddr != "" {
		apiServer := api.NewServer(userService, leadService, visitService, sqlDB, logger)
		server = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           apiServer.Router(cfg.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			logger.Infof("HTTP API listening on %s", cfg.HTTPAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.WithError(err).Fatal("HTTP server failed")
			}
		}()
	}

	var client *telegram.Client
	if cfg.TelegramToken != "" {
		client, err = telegram.NewClient(cfg.TelegramToken, cfg.BotDebug)
		if err != nil {
			logger.Fatal("Failed to create Telegram client:", err)
		}
		logger.Infof("Authorized on account %s", client.Bot.Self.UserName)

		botHandler := handler.NewHandler(
			client.Bot,
			userService,
			leadService,
			leaveService,
			visitService,
			cfg,
			logger,
		)
		go botHandler.HandleUpdates(client.Updates())
	} else {
		logger.Warn("TELEGRAM_BOT_TOKEN is not set, running the HTTP API only")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Service started. Press Ctrl+C to stop.")
	<-stop

	if client != nil {
		client.Stop()
	}

	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := server.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("HTTP server shutdown failed")
		}
		cancel()
	}

	if err := sqlDB.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	logger.Info("Service stopped gracefully")
}

func newLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}
