// Package main contains the entrypoint for the MoodMeter bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/moodmeter/moodmeter/internal/alert"
	"github.com/moodmeter/moodmeter/internal/bot"
	"github.com/moodmeter/moodmeter/internal/bot/handlers"
	"github.com/moodmeter/moodmeter/internal/bot/tasks"
	"github.com/moodmeter/moodmeter/internal/classifier"
	"github.com/moodmeter/moodmeter/internal/config"
	"github.com/moodmeter/moodmeter/internal/dashboard"
	"github.com/moodmeter/moodmeter/internal/database"
	"github.com/moodmeter/moodmeter/internal/logger"
	"github.com/moodmeter/moodmeter/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// classifier, bot, scheduler, dashboard), handles graceful shutdown, and
// returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("Failed to connect to database", "driver", cfg.Database.Driver, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	cls, err := classifier.New(ctx, cfg.Classifier, log)
	if err != nil {
		log.Error("Failed to initialize classifier", "provider", cfg.Classifier.Provider, "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Classifier: cls,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommandMenu(ctx, tg, log); err != nil {
		// The menu is cosmetic; commands still work without it.
		log.Warn("Failed to publish command menu", "error", err)
	}

	notifier := telegram.NewNotifier(tg, log)
	engine := alert.NewEngine(store, notifier, log, cfg.Alert.Window)

	tDeps := tasks.TaskDeps{
		Logger:      log,
		Store:       store,
		AlertEngine: engine,
		Config:      cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var dashboardSrv *dashboard.Server
	if cfg.Dashboard.Enabled {
		dashboardSrv = dashboard.NewServer(cfg.Dashboard, store, log)
	} else {
		log.Info("Dashboard API disabled by configuration")
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched, dashboardSrv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
