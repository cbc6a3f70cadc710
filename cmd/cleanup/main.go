// Command cleanup deletes expired mailboxes and their messages in batches
// until none remain. Intended to run as a cron job alongside the API.
package main

import (
	"context"
	"os"
	"time"

	"github.com/tempmailhq/tempmail-api/internal/core/service"
	mongodb "github.com/tempmailhq/tempmail-api/internal/infrastructure/db/mongo"
	redisdb "github.com/tempmailhq/tempmail-api/internal/infrastructure/db/redis"
	"github.com/tempmailhq/tempmail-api/internal/pkg/config"
	"github.com/tempmailhq/tempmail-api/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	emails := service.NewEmailService(
		mongodb.NewEmailRepository(db),
		mongodb.NewMessageRepository(db),
		mongodb.NewUserRepository(db),
		redisdb.NewConfigStore(rdb),
		log,
	)

	var total int64
	for {
		deleted, err := emails.PurgeExpired(ctx)
		if err != nil {
			log.Error().Err(err).Msg("cleanup run failed")
			os.Exit(1)
		}
		total += deleted
		if deleted == 0 {
			break
		}
	}

	log.Info().Int64("total_deleted", total).Msg("cleanup finished")
}
