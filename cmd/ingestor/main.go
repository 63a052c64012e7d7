package main

import (
	"context"
	"database/sql"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"resto_reviews/internal/adapters/observability"
	"resto_reviews/internal/adapters/places"
	redisad "resto_reviews/internal/adapters/redis"
	"resto_reviews/internal/app"
	"resto_reviews/internal/shared"
	mysqlrepo "resto_reviews/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	runID := uuid.NewString()
	log.Info().
		Str("run_id", runID).
		Str("base", cfg.PlacesBase).
		Int("workers", cfg.Workers).
		Int("reviews", cfg.ReviewCount).
		Msg("ingestor starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := places.New(cfg.PlacesBase, cfg.PlacesKey, cfg.PlacesLang, cfg.ReviewSort, cfg.FetchDelay)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	ing := app.NewIngestionService(client, repo, cache)

	// place ids come from the CLI when given, otherwise refresh everything
	// already known to the store
	ids := os.Args[1:]
	if len(ids) == 0 {
		ids, err = repo.ListPlaceIDs(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("listing place ids failed")
		}
	}
	if len(ids) == 0 {
		log.Warn().Msg("no place ids to ingest")
		return
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, id := range ids {
		id := id

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(placeID string) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := ing.IngestPlace(ctx, placeID, cfg.ReviewCount); err != nil {
				log.Warn().Str("run_id", runID).Str("id", placeID).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("run_id", runID).Str("id", placeID).Msg("ingest ok")
		}(id)
	}

	wg.Wait()
	log.Info().Str("run_id", runID).Msg("ingestion completed")
}
