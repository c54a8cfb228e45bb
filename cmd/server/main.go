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
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nestly/internal/agreement"
	"nestly/internal/agreement/handler"
	"nestly/internal/agreement/metrics"
	"nestly/internal/agreement/store/generated"
	"nestly/internal/agreement/store/match"
	"nestly/internal/agreement/store/template"
	"nestly/internal/platform/config"
	"nestly/internal/platform/httpserver"
	"nestly/internal/platform/logger"
	"nestly/internal/platform/middleware"
	redisplatform "nestly/internal/platform/redis"
	audit "nestly/pkg/platform/audit"
	"nestly/pkg/platform/audit/publisher"
	auditkafka "nestly/pkg/platform/audit/store/kafka"
	auditmemory "nestly/pkg/platform/audit/store/memory"
	"nestly/pkg/platform/sentinel"
)

// templatePutter is satisfied by both template store backends; used only to
// seed the default template at startup.
type templatePutter interface {
	agreement.TemplateStore
	Put(ctx context.Context, tpl *agreement.Template) error
}

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	var (
		templates  templatePutter
		agreements agreement.AgreementStore
		matches    agreement.MatchReader
		db         *sql.DB
	)
	if cfg.PostgresURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		if err := db.PingContext(ctx); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		templates = template.NewPostgres(db)
		agreements = generated.NewPostgres(db)
		matches = match.NewPostgres(db)
		log.Info("using postgres storage")
	} else {
		templates = template.NewMemory()
		agreements = generated.NewMemory()
		matches = match.NewMemory()
		log.Info("using in-memory storage")
	}

	if err := seedDefaultTemplate(ctx, templates); err != nil {
		log.Error("failed to seed default template", "error", err)
		os.Exit(1)
	}

	var templateStore agreement.TemplateStore = templates
	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		templateStore = template.NewCached(templates, redisClient.Client, cfg.TemplateCacheTTL, log)
		log.Info("template cache enabled")
	}

	var auditStore audit.Store
	var closeAudit func()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaStore, err := auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		auditStore = kafkaStore
		closeAudit = kafkaStore.Close
		log.Info("audit events publishing to kafka", "topic", cfg.Kafka.AuditTopic)
	} else {
		auditStore = auditmemory.NewInMemoryStore()
	}
	auditor := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(256))

	svc := agreement.NewService(templateStore, agreements, matches,
		agreement.WithLogger(log),
		agreement.WithMetrics(metrics.New()),
		agreement.WithAuditor(auditor),
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.ActorID)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(db, redisClient))
	handler.New(svc, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting nestly agreement engine", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	auditor.Close()
	if closeAudit != nil {
		closeAudit()
	}
}

// seedDefaultTemplate installs the built-in template when the store has no
// active system template yet. Idempotent across restarts.
func seedDefaultTemplate(ctx context.Context, store templatePutter) error {
	_, err := store.FindDefault(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return store.Put(ctx, template.DefaultTemplate())
}

func healthz(db *sql.DB, redisClient *redisplatform.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "postgres unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Health(ctx); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
