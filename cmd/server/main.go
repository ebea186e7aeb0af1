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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	actionhandler "regula/internal/action/handler"
	actionmetrics "regula/internal/action/metrics"
	actionservice "regula/internal/action/service"
	actionstore "regula/internal/action/store"
	apphandler "regula/internal/application/handler"
	appmetrics "regula/internal/application/metrics"
	appservice "regula/internal/application/service"
	appstore "regula/internal/application/store"
	"regula/internal/audit"
	auditkafka "regula/internal/audit/kafka"
	auditworker "regula/internal/audit/worker"
	lichandler "regula/internal/license/handler"
	licmetrics "regula/internal/license/metrics"
	licservice "regula/internal/license/service"
	licstore "regula/internal/license/store"
	"regula/internal/platform/config"
	"regula/internal/platform/httpserver"
	"regula/internal/platform/idgen"
	"regula/internal/platform/logger"
	"regula/internal/platform/metrics"
	"regula/internal/platform/middleware"
	redisplatform "regula/internal/platform/redis"
	"regula/internal/regfeed"
	"regula/internal/registry"
	"regula/internal/reporting"
	"regula/internal/screening"
	"regula/internal/staffdir"
	"regula/pkg/platform/circuit"
)

// main wires the stores, workflow services, and HTTP surface. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := idgen.New(idgen.Seeds{})

	var (
		applications appservice.Store    = appstore.NewInMemory()
		licenses     licservice.Store    = licstore.NewInMemory()
		actions      actionservice.Store = actionstore.NewInMemory()
		auditSink    audit.Store         = audit.NewInMemoryStore()
		db           *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("postgres open failed", "error", err.Error())
			os.Exit(1)
		}
		defer db.Close()
		if err := applySchemas(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err.Error())
			os.Exit(1)
		}
		applications = appstore.NewPostgres(db)
		licenses = licstore.NewPostgres(db)
		actions = actionstore.NewPostgres(db)
		auditSink = audit.NewPostgresStore(db)
		log.Info("using postgres stores")
	}

	screeningCache := screening.Cache(screening.NewInMemoryCache(cfg.ScreeningTTL))
	redisClient, err := redisplatform.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		screeningCache = screening.NewRedisCache(redisClient.Client, cfg.ScreeningTTL)
		log.Info("using redis screening cache")
	}

	g, ctx := errgroup.WithContext(ctx)

	// Audit events land in the primary sink; with Kafka configured they are
	// teed onto a channel a background worker ships to the topic.
	var auditStore audit.Store = auditSink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPub, err := auditkafka.New(ctx, cfg.KafkaBrokers, cfg.AuditTopic, auditkafka.WithLogger(log))
		if err != nil {
			log.Error("kafka connect failed", "error", err.Error())
			os.Exit(1)
		}
		defer kafkaPub.Close()

		tee := newAuditTee(auditSink, cfg.AuditBuffer, log)
		auditStore = tee
		g.Go(func() error {
			return auditworker.New(kafkaPub, tee.Shipments()).Run(ctx)
		})
		log.Info("shipping audit events to kafka", "topic", cfg.AuditTopic)
	}
	auditing := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithLogger(log),
	)
	defer auditing.Close()

	screener := screening.New(screening.MockProvider{}, screeningCache,
		screening.WithLogger(log),
		screening.WithBreaker(circuit.New("screening-provider")),
	)

	staff := staffdir.NewInMemoryDirectory(defaultStaff()...)
	feed := regfeed.NewInMemoryFeed()

	entities := registry.New(registry.NewInMemoryStore(), registry.StubBlobStore{}, ids,
		registry.WithLogger(log),
		registry.WithAuditPublisher(auditing),
	)
	licenseSvc := licservice.New(licenses, ids,
		licservice.WithLogger(log),
		licservice.WithMetrics(licmetrics.New()),
		licservice.WithAuditPublisher(auditing),
	)
	applicationSvc := appservice.New(applications, ids, entities, screener, licenseSvc,
		appservice.WithLogger(log),
		appservice.WithMetrics(appmetrics.New()),
		appservice.WithAuditPublisher(auditing),
		appservice.WithStaffDirectory(staff),
		appservice.WithRegulatoryFeed(feed),
	)
	actionSvc := actionservice.New(actions, ids, licenseSvc,
		actionservice.WithLogger(log),
		actionservice.WithMetrics(actionmetrics.New()),
		actionservice.WithAuditPublisher(auditing),
	)
	reportingSvc := reporting.New(applicationSvc, licenseSvc)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RequestTime,
		chimiddleware.Timeout(30*time.Second),
		middleware.StaffContext,
		metrics.NewHTTP().Middleware,
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.ContentTypeJSON,
	)
	apphandler.New(applicationSvc, log).Register(router)
	lichandler.New(licenseSvc, log).Register(router)
	actionhandler.New(actionSvc, log).Register(router)
	registry.NewHandler(entities).Register(router)
	reporting.NewHandler(reportingSvc, reporting.WithDefaultWindow(cfg.RenewalWindow)).Register(router)

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(db, redisClient))

	srv := httpserver.New(cfg.Addr, router)
	g.Go(func() error {
		log.Info("starting regula", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func applySchemas(ctx context.Context, db *sql.DB) error {
	for _, schema := range []string{
		appstore.Schema,
		licstore.Schema,
		actionstore.Schema,
		audit.Schema,
	} {
		if _, err := db.ExecContext(ctx, schema); err != nil {
			return err
		}
	}
	return nil
}

// healthz reports liveness plus the state of optional backing services.
func healthz(db *sql.DB, redisClient *redisplatform.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

// defaultStaff seeds the directory used for display enrichment until a real
// HR integration lands.
func defaultStaff() []staffdir.Member {
	return []staffdir.Member{
		{ID: "reg_001", Name: "Priya Nair", Role: "Senior Licensing Officer", Team: "Alpha Review Team"},
		{ID: "reg_002", Name: "Tomas Eder", Role: "Review Analyst", Team: "Alpha Review Team"},
		{ID: "reg_003", Name: "Mei-Ling Chou", Role: "Enforcement Lead", Team: "Enforcement"},
	}
}
