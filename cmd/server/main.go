package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/festival-jury-scoring/internal/config"
	"github.com/iliyamo/festival-jury-scoring/internal/database"
	"github.com/iliyamo/festival-jury-scoring/internal/handler"
	"github.com/iliyamo/festival-jury-scoring/internal/logger"
	"github.com/iliyamo/festival-jury-scoring/internal/middleware"
	"github.com/iliyamo/festival-jury-scoring/internal/queue"
	"github.com/iliyamo/festival-jury-scoring/internal/repository"
	"github.com/iliyamo/festival-jury-scoring/internal/roster"
	"github.com/iliyamo/festival-jury-scoring/internal/router"
	"github.com/iliyamo/festival-jury-scoring/internal/scoring"
	queue_publisher "github.com/iliyamo/festival-jury-scoring/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.RunMigrations(db, log); err != nil {
			return err
		}
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rosterRepo := repository.NewRosterRepo(db, log)
	scoreRepo := repository.NewScoreRepo(db)
	if err := handler.SeedOrganizer(ctx, cfg, users, log); err != nil {
		return fmt.Errorf("seed organizer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := scoring.NewMetrics(reg)

	rosterStore := roster.NewStore(cfg.CategoriesPerDiscipline, log)
	feed := roster.NewFeed(rosterRepo, log)
	ledger := scoring.NewLedger(scoreRepo, log, metrics)
	engine := scoring.NewEngine(ledger, rosterStore, scoring.Config{CategoriesPerDiscipline: cfg.CategoriesPerDiscipline}, log, metrics)

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable, response cache and rate limiting are off", zap.Error(err))
	} else {
		defer rdb.Close()
	}
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)

	instanceID := uuid.NewString()
	var (
		scorePub  handler.ScorePublisher
		rosterPub roster.Publisher
		consumer  *queue.Consumer
	)
	if cfg.RabbitMQURL != "" {
		pub := queue_publisher.New(cfg.RabbitMQURL, instanceID, log)
		defer pub.Close()
		scorePub, rosterPub = pub, pub
		consumer = queue.NewConsumer(cfg.RabbitMQURL, instanceID, queue.Handlers{
			ScoresSubmitted: func(ctx context.Context, ev queue.Event) error {
				if err := ledger.Refresh(ctx); err != nil {
					return err
				}
				return cache.Purge(ctx)
			},
			RosterChanged: func(ctx context.Context, ev queue.Event) error {
				feed.Notify()
				return cache.Purge(ctx)
			},
		}, log)
	} else {
		log.Info("RABBITMQ_URL not set, running without cross-instance updates")
	}
	rosterSvc := roster.NewService(rosterRepo, rosterStore, feed, rosterPub, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover(), middleware.RequestID(), middleware.RequestLogger(log))

	router.RegisterRoutes(e, engine.Ready, reg)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, log), cfg.JWTSecret)
	router.RegisterPublic(e,
		handler.NewJuryHandler(rosterStore, engine, scorePub, cache, log),
		handler.NewResultsHandler(engine, cfg.RankingTopN, log),
		cache.Middleware(), limiter)
	router.RegisterAdmin(e,
		handler.NewAdminHandler(rosterSvc, cache, log),
		handler.NewExportHandler(engine, cfg.ExportTable, log),
		cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("instance", instanceID))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return ignoreCanceled(feed.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(rosterStore.Follow(gctx, feed.Updates())) })
	g.Go(func() error { return ignoreCanceled(loadLedger(gctx, ledger, cfg.LedgerRetryInterval, log)) })
	if consumer != nil {
		g.Go(func() error { return ignoreCanceled(consumer.Run(gctx)) })
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadLedger retries the initial ledger load with capped exponential
// backoff.  The API answers 503 until it succeeds.
func loadLedger(ctx context.Context, ledger *scoring.Ledger, interval time.Duration, log *zap.Logger) error {
	const maxDelay = 30 * time.Second
	delay := interval
	if delay <= 0 {
		delay = time.Second
	}
	for attempt := 1; ; attempt++ {
		scores, err := ledger.LoadAll(ctx)
		if err == nil {
			log.Info("scoring ready", zap.Int("records", len(scores)), zap.Int("attempts", attempt))
			return nil
		}
		log.Error("score ledger load failed", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("retry_in", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		if delay *= 2; delay > maxDelay {
			delay = maxDelay
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
