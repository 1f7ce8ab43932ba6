package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "review_pulse/internal/adapters/http_server"
	"review_pulse/internal/adapters/observability"
	redisad "review_pulse/internal/adapters/redis"
	"review_pulse/internal/adapters/sentiment"
	"review_pulse/internal/app"
	"review_pulse/internal/scoring"
	"review_pulse/internal/shared"
	mysqlrepo "review_pulse/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	calc, err := scoring.NewCalculator(scoring.Weights{Star: cfg.StarWeight, Sentiment: cfg.SentimentWeight})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid score weights")
	}
	vocab := scoring.LoadVocabulary(cfg.KeywordsPath)

	gateway, err := sentiment.New(cfg.SentimentBase, cfg.SentimentRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize sentiment client")
	}

	agg := app.NewAggregator(repo, calc, cache)
	reviews := app.NewReviewService(repo, gateway, agg, calc, vocab, cache, cfg.EnrichWorkers)
	products := app.NewProductService(repo, cache)
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:                q,
		Reviews:          reviews,
		P:                products,
		Vocab:            vocab,
		SentimentHealthy: gateway.Healthy,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// drain in-flight enrichment tasks before exiting
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	reviews.Wait()
	log.Info().Msg("shutdown complete")
}
