package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/firesafety/incident-system/internal/api"
	"github.com/firesafety/incident-system/internal/core/ports"
	"github.com/firesafety/incident-system/internal/infrastructure/config"
	mongodb "github.com/firesafety/incident-system/internal/infrastructure/db/mongo"
	redisdb "github.com/firesafety/incident-system/internal/infrastructure/db/redis"
	"github.com/firesafety/incident-system/internal/infrastructure/notify"
	"github.com/firesafety/incident-system/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	// --- Notifications ---
	var notifier ports.Notifier = notify.NopNotifier{}
	if cfg.Telegram.BotToken != "" {
		tn, err := notify.NewTelegramNotifier(ctx, cfg.Telegram.BotToken, cfg.Telegram.AdminChatID, cfg.Telegram.Workers, mongodb.NewUserRepository(db), log)
		if err != nil {
			log.Error().Err(err).Msg("telegram setup failed, notifications disabled")
		} else {
			notifier = tn
		}
	} else {
		log.Info().Msg("no telegram token configured, notifications disabled")
	}

	// --- HTTP server ---
	e, err := api.NewRouter(cfg, db, rdb, notifier)
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := e.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Info().Err(err).Msg("server stopped")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewTokenRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewAlertRepository(db).EnsureIndexes(ctx)
}
