// cmd/lifecycle-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"admissions-engine/internal/approval"
	"admissions-engine/internal/common/auth"
	appaws "admissions-engine/internal/common/aws"
	"admissions-engine/internal/common/camunda"
	"admissions-engine/internal/common/config"
	"admissions-engine/internal/common/database"
	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/common/observability"
	"admissions-engine/internal/events"
	"admissions-engine/internal/jobindex"
	"admissions-engine/internal/lifecycle"
	"admissions-engine/internal/notify"
	"admissions-engine/internal/store"
	"admissions-engine/internal/store/cache"
	"admissions-engine/internal/store/memory"
	"admissions-engine/internal/store/postgres"

	ac "admissions-engine/internal/workers/admissions/apply-course"
	ci "admissions-engine/internal/workers/admissions/choose-institution"
	lr "admissions-engine/internal/workers/admissions/list-registrations"
	pa "admissions-engine/internal/workers/admissions/publish-admissions"
	srs "admissions-engine/internal/workers/admissions/set-registration-status"
	sg "admissions-engine/internal/workers/admissions/submit-grades"
	mnr "admissions-engine/internal/workers/notifications/mark-notification-read"
	ra "admissions-engine/internal/workers/platform/review-account"
	aj "admissions-engine/internal/workers/recruitment/apply-job"
	cjm "admissions-engine/internal/workers/recruitment/check-job-matches"
	ii "admissions-engine/internal/workers/recruitment/invite-interview"
	sa "admissions-engine/internal/workers/recruitment/score-applicants"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lifecycle manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("storeDriver", cfg.Database.Driver),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Store and infrastructure ---
	be := &database.Backends{}
	defer func() {
		if err := be.Close(); err != nil {
			zapLog.Error("error closing backends", zap.Error(err))
		}
	}()

	st, err := openStore(ctx, cfg, be, zapLog)
	if err != nil {
		zapLog.Fatal("store initialization failed", zap.Error(err))
	}

	var rdb redis.Cmdable
	if cfg.Database.Redis.Address != "" {
		var rc *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rc, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rc.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		be.Add(rc)
		rdb = rc.Client
		st = cache.Wrap(st, rdb, rc.CacheTTL, log)
		zapLog.Info("Redis connected successfully, student cache enabled")
	}

	var index *jobindex.Index
	if cfg.Matching.UseIndex {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		be.Add(es)
		index = jobindex.New(es.Client, cfg.Matching.IndexName, log)
		zapLog.Info("Elasticsearch connected successfully, job index enabled")
	}

	publisher := events.Publisher(events.Noop{})
	if cfg.Events.SNS.Enabled {
		snsClient, err := appaws.NewSNSClient(ctx, cfg.Events.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		publisher = events.NewSNSPublisher(snsClient, cfg.Events.SNS.TopicARN)
		zapLog.Info("Lifecycle events publishing to SNS", zap.String("topicArn", cfg.Events.SNS.TopicARN))
	}

	// Left as a nil interface when Keycloak is not configured so Authorize trusts callers.
	var sessions auth.SessionResolver
	if cfg.Auth.Keycloak.URL != "" {
		sessions = auth.NewKeycloakClient(
			cfg.Auth.Keycloak.URL,
			cfg.Auth.Keycloak.Realm,
			cfg.Auth.Keycloak.ClientID,
			cfg.Auth.Keycloak.ClientSecret,
		)
	} else {
		zapLog.Warn("Keycloak not configured, job callers are not authenticated")
	}

	// --- Domain services ---
	engine := lifecycle.New(st, log,
		lifecycle.WithEvents(publisher),
		lifecycle.WithMaxApplications(cfg.Lifecycle.MaxApplicationsPerInstitution),
		lifecycle.WithTransitionRetries(cfg.Lifecycle.TransitionRetries),
	)

	emitterOpts := []notify.Option{}
	if rdb != nil {
		emitterOpts = append(emitterOpts, notify.WithRedis(rdb))
	}
	if index != nil {
		emitterOpts = append(emitterOpts, notify.WithIndex(index))
	}
	emitter := notify.NewEmitter(st, log, emitterOpts...)

	approvals := approval.NewHTTPService(st, cfg.Approval.WebhookURL, config.GetDuration(cfg.Approval.Timeout), log)

	// --- Workers ---
	handlers := map[string]func(worker.JobClient, entities.Job){
		ac.TaskType:  ac.NewHandler(ac.LoadConfig(config.GetWorkerConfig(cfg, ac.TaskType)), engine, sessions, obs, log).Handle,
		sg.TaskType:  sg.NewHandler(sg.LoadConfig(config.GetWorkerConfig(cfg, sg.TaskType)), engine, sessions, obs, log).Handle,
		srs.TaskType: srs.NewHandler(srs.LoadConfig(config.GetWorkerConfig(cfg, srs.TaskType)), engine, sessions, obs, log).Handle,
		pa.TaskType:  pa.NewHandler(pa.LoadConfig(config.GetWorkerConfig(cfg, pa.TaskType)), engine, sessions, obs, log).Handle,
		ci.TaskType:  ci.NewHandler(ci.LoadConfig(config.GetWorkerConfig(cfg, ci.TaskType)), engine, sessions, obs, log).Handle,
		lr.TaskType:  lr.NewHandler(lr.LoadConfig(config.GetWorkerConfig(cfg, lr.TaskType)), engine, sessions, obs, log).Handle,
		aj.TaskType:  aj.NewHandler(aj.LoadConfig(config.GetWorkerConfig(cfg, aj.TaskType)), engine, sessions, obs, log).Handle,
		sa.TaskType:  sa.NewHandler(sa.LoadConfig(config.GetWorkerConfig(cfg, sa.TaskType)), engine, sessions, obs, log).Handle,
		ii.TaskType:  ii.NewHandler(ii.LoadConfig(config.GetWorkerConfig(cfg, ii.TaskType)), emitter, st, sessions, obs, log).Handle,
		cjm.TaskType: cjm.NewHandler(cjm.LoadConfig(config.GetWorkerConfig(cfg, cjm.TaskType)), emitter, sessions, obs, log).Handle,
		mnr.TaskType: mnr.NewHandler(mnr.LoadConfig(config.GetWorkerConfig(cfg, mnr.TaskType)), emitter, sessions, obs, log).Handle,
		ra.TaskType:  ra.NewHandler(ra.LoadConfig(config.GetWorkerConfig(cfg, ra.TaskType)), approvals, sessions, obs, log).Handle,
	}

	var workers []*camunda.CamundaWorker
	for taskType, handle := range handlers {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			continue
		}
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handle, log))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Background job matching ---
	var bg sync.WaitGroup
	if cfg.Matching.Enabled {
		var reindexer notify.Reindexer
		if index != nil {
			reindexer = index
		}
		sched := notify.NewMatchScheduler(emitter, reindexer,
			config.GetDuration(cfg.Matching.Interval), cfg.Matching.Concurrency, log)
		bg.Add(1)
		go func() {
			defer bg.Done()
			sched.Run(ctx)
		}()
	}

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Observability.MetricsAddress,
		Handler:           healthMux(zeebe, be),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	bg.Wait()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Lifecycle manager stopped gracefully")
}

// openStore connects the configured backend and applies migrations when asked.
func openStore(ctx context.Context, cfg *config.Config, be *database.Backends, zapLog *zap.Logger) (*store.Store, error) {
	if cfg.Database.Driver == config.DriverMemory {
		zapLog.Warn("Using the in-memory store, data is lost on restart")
		return memory.New().Store, nil
	}

	var pg *database.PostgresClient
	err := retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	be.Add(pg)
	zapLog.Info("PostgreSQL connected successfully")

	if cfg.Database.AutoMigrate {
		m, err := database.NewMigrator(cfg.Database.Postgres, cfg.Database.MigrationsPath)
		if err != nil {
			return nil, err
		}
		defer m.Close()
		if err := m.Up(); err != nil {
			return nil, err
		}
		version, dirty, err := m.Version()
		if err != nil {
			return nil, err
		}
		zapLog.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	return postgres.New(pg.DB), nil
}

func healthMux(zeebe *camunda.Client, be *database.Backends) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{}
		ready := true
		check := func(name string, err error) {
			if err != nil {
				ready = false
				checks[name] = err.Error()
				return
			}
			checks[name] = "ok"
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		check("zeebe", zeebe.HealthCheck(ctx))
		for name, err := range be.Ready(ctx) {
			check(name, err)
		}

		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		writeStatus(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
