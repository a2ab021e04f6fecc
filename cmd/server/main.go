// Package main wires high-level dependencies, exposes the HTTP router, and
// keeps the server lifecycle small. Business logic lives in the internal
// registry packages.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"echoid/internal/jwtauth"
	"echoid/internal/platform/config"
	"echoid/internal/platform/httpserver"
	"echoid/internal/platform/logger"
	"echoid/internal/platform/middleware"
	platformredis "echoid/internal/platform/redis"
	"echoid/internal/registry/handler"
	"echoid/internal/registry/metrics"
	"echoid/internal/registry/service"
	"echoid/internal/registry/store"
	"echoid/pkg/platform/audit"
	auditpublisher "echoid/pkg/platform/audit/publisher"
	auditmemory "echoid/pkg/platform/audit/store/memory"
	auditworker "echoid/pkg/platform/audit/worker"
	"echoid/pkg/platform/httputil"
)

const auditInboxSize = 256

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, runAudit, closeAudit, err := buildAudit(cfg, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	registry, err := service.New(accounts,
		service.WithLogger(log),
		service.WithMetrics(metrics.New()),
		service.WithAuditPublisher(publisher),
	)
	if err != nil {
		return err
	}

	tokens := jwtauth.New(cfg.JWTSigningKey, cfg.JWTIssuer)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RequestTime)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())
	handler.New(registry, tokens, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting echoid registry", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if runAudit != nil {
		g.Go(func() error {
			if err := runAudit(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildStore selects the account store backend: Postgres when a DSN is
// configured, in-memory otherwise, with an optional Redis read-through cache.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (store.Store, func(), error) {
	closers := []func(){}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var accounts store.Store
	if cfg.Postgres.DSN != "" {
		db, err := store.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = db.Close() })
		accounts = store.NewPostgres(db)
		log.Info("using postgres account store")
	} else {
		accounts = store.NewInMemory()
		log.Info("using in-memory account store")
	}

	rdb, err := platformredis.New(cfg.Redis)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		accounts = store.NewCache(accounts, rdb.Client, cfg.Redis.CacheTTL, log)
		log.Info("alias cache enabled", "ttl", cfg.Redis.CacheTTL)
	}

	return accounts, closeAll, nil
}

// buildAudit selects the audit pipeline: Kafka when brokers are configured,
// otherwise an in-process channel drained by a worker into a bounded store.
func buildAudit(cfg config.Server, log *slog.Logger) (audit.Publisher, func(context.Context) error, func(), error) {
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := auditpublisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("audit events publishing to kafka", "topic", cfg.Kafka.Topic)
		closeKafka := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = kafka.Close(ctx)
		}
		return kafka, nil, closeKafka, nil
	}

	inbox := make(chan audit.Event, auditInboxSize)
	worker := auditworker.NewWorker(auditmemory.NewInMemory(1024), inbox)
	return audit.NewChannelPublisher(inbox), worker.Run, func() {}, nil
}
