package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"review_pulse/internal/adapters/observability"
	redisad "review_pulse/internal/adapters/redis"
	"review_pulse/internal/app"
	"review_pulse/internal/scoring"
	"review_pulse/internal/shared"
	mysqlrepo "review_pulse/internal/storage/mysql"
)

// rescore recomputes every product's aggregates from its current review set.
// Useful after vocabulary or weight changes, or to repair drift.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Int("workers", cfg.EnrichWorkers).
		Float64("star_weight", cfg.StarWeight).
		Float64("sentiment_weight", cfg.SentimentWeight).
		Msg("rescore starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	calc, err := scoring.NewCalculator(scoring.Weights{Star: cfg.StarWeight, Sentiment: cfg.SentimentWeight})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid score weights")
	}

	agg := app.NewAggregator(repo, calc, cache)

	products, err := repo.ListProducts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("list products failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.EnrichWorkers))
	var wg sync.WaitGroup

	for _, p := range products {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(productID int64) {
			defer wg.Done()
			defer sem.Release(1)

			scores, err := agg.Recompute(ctx, productID)
			if err != nil {
				log.Warn().Int64("id", productID).Err(err).Msg("rescore failed")
				return
			}
			log.Info().
				Int64("id", productID).
				Int("reviews", scores.TotalReviews).
				Float64("hybrid", scores.HybridScore).
				Msg("rescore ok")
		}(p.ID)
	}

	wg.Wait()
	log.Info().Int("products", len(products)).Msg("rescore completed")
}
