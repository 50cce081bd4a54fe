package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mroshb/hitched/internal/handlers"
	"github.com/mroshb/hitched/internal/middleware"
	"github.com/mroshb/hitched/internal/server"
	"github.com/mroshb/hitched/pkg/logger"
	"github.com/mroshb/hitched/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot with the health and metrics endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runBot(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting Hitched bot...")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	a, err := newApplication(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	h := handlers.NewHandlerManager(
		cfg,
		a.users,
		a.profileService(a.extractor(ctx)),
		a.matchService(),
		a.coachService(),
		a.metrics,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.GetRateLimitWindow())
	go limiter.Run(ctx, time.Minute)

	srv := server.New(net.JoinHostPort("", cfg.AppPort), server.NewRouter(a.registry, a.ping()))
	srv.Start()

	bot, err := telegram.InitBot(cfg, h, limiter, a.metrics)
	if err != nil {
		return err
	}
	bot.Start(ctx)
	logger.Info("Bot started successfully", "env", cfg.AppEnv, "storage", cfg.DBDriver)

	<-ctx.Done()
	logger.Info("Shutting down gracefully...")
	stop()

	bot.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	logger.Info("Bot stopped")
	return nil
}
