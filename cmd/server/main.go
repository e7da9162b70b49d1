// Command server runs the authentication and delegation service for the
// wedding-photo platform. Wiring only; every decision lives in internal
// packages.
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

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/service"
	delegationstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/delegation"
	gueststore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/guest"
	sessionstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/session"
	dirstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/store"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/config"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/httpserver"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/logger"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/metrics"
	platformredis "github.com/kherembourg/RefletsDeBonheur-sub000/internal/platform/redis"
	httptransport "github.com/kherembourg/RefletsDeBonheur-sub000/internal/transport/http"
	audit "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	auditkafka "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/kafka"
	auditmem "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/store/memory"
	auditpg "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/store/postgres"
	auditworker "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres + Redis in production, in-memory dev mode otherwise.
	var (
		dirStore        service.DirectoryStore
		sessionStore    service.SessionStore
		delegationStore service.DelegationStore
		auditStore      audit.Store
		healthChecks    []httptransport.HealthChecker
	)
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		dirStore = dirstore.NewPostgres(db)
		sessionStore = sessionstore.NewPostgres(db)
		delegationStore = delegationstore.NewPostgres(db)
		auditStore = auditpg.New(db)
		healthChecks = append(healthChecks, dbHealth{db})
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		devDir := dirstore.NewInMemory()
		superuser, tenant := dirstore.SeedDevDirectory(devDir)
		log.Info("seeded dev directory",
			"superuser", superuser.Username,
			"tenant", tenant.Slug,
		)
		dirStore = devDir
		sessionStore = sessionstore.NewInMemory()
		delegationStore = delegationstore.NewInMemory()
		auditStore = auditmem.New()
	}

	var guestStore service.GuestSessionStore
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		guestStore = gueststore.NewRedis(redisClient.Client)
		healthChecks = append(healthChecks, redisClient)
	} else {
		log.Warn("no redis URL configured, guest sessions held in memory")
		guestStore = gueststore.NewInMemory()
	}

	// Audit: durable store always; Kafka fan-out for security events when
	// brokers are configured.
	auditOpts := []audit.PublisherOption{}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to create kafka audit sink", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
	}
	publisher := audit.NewPublisher(auditStore, auditOpts...)

	// Services enqueue audit events; a worker absorbs the storage latency.
	auditQueue := auditworker.NewQueue(256)
	auditWorker := auditworker.NewWorker(publisher, auditQueue.Chan(), log)

	svc := service.New(dirStore, sessionStore, guestStore, delegationStore,
		service.WithLogger(log),
		service.WithAuditPublisher(auditQueue),
		service.WithMetrics(metrics.New()),
	)

	router := httptransport.NewRouter(httptransport.NewHandler(svc, healthChecks...))
	srv := httpserver.New(cfg.Addr, router)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := auditWorker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		log.Info("starting auth server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Periodic expired-delegation sweep.
	group.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				result, err := svc.CleanupExpiredDelegations(groupCtx)
				if err != nil {
					log.Error("delegation cleanup failed", "error", err)
					continue
				}
				if result.DeletedCount > 0 {
					log.Info("delegation cleanup", "deleted", result.DeletedCount)
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
