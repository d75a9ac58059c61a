package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smpanel/internal/bootstrap"
	"smpanel/internal/bot"
	"smpanel/internal/config"
	cronpkg "smpanel/internal/cron"
	"smpanel/internal/middleware"
	"smpanel/internal/panel"
	"smpanel/internal/repository"
	"smpanel/internal/router"
	"smpanel/internal/session"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if cfg.Server.Env == "development" {
		if dev, err := zap.NewDevelopment(); err == nil {
			logger = dev
		}
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.Migrate(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Redis (optional) ---
	redisClient, err := middleware.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory dedup", zap.Error(err))
	}
	updateDeduper := middleware.NewDeduper(redisClient, "tg:update", 10*time.Minute)
	menuDeduper := middleware.NewDeduper(redisClient, "tg:menu", bot.MenuDebounce)

	// --- Bot ---
	repos := &bot.Repos{
		Panel:       repository.NewPanelRepository(db),
		Category:    repository.NewCategoryRepository(db),
		Product:     repository.NewProductRepository(db),
		ExtraVolume: repository.NewExtraVolumeRepository(db),
		Order:       repository.NewOrderRepository(db),
	}
	panels := panel.NewService(cfg.Panel.Timeout, logger)

	teleBot, err := bot.New(cfg, bot.Deps{
		Repos:     repos,
		Panels:    panels,
		Sessions:  session.NewStore(1, 20),
		MenuDedup: menuDeduper,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true
	router.Setup(e, logger, updateDeduper, cfg.Bot.WebhookPath, cfg.Bot.Token, teleBot.WebhookHandler())

	// --- Cron Scheduler ---
	scheduler := cronpkg.New(cfg.Panel.CheckCron, cfg.Panel.Timeout, repos.Panel, panels, teleBot, logger)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start cron scheduler", zap.Error(err))
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting SMPanel server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	go teleBot.Start()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	teleBot.Stop()

	ctx := scheduler.Stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg)
	if err != nil {
		return err
	}
	if err := bootstrap.Migrate(db); err != nil {
		return err
	}
	logger.Info("Schema migration completed")
	return nil
}
