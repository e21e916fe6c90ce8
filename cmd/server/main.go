package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modsieve/internal/activity"
	"modsieve/internal/activity/local"
	"modsieve/internal/cache"
	"modsieve/internal/check"
	checkmetrics "modsieve/internal/check/metrics"
	"modsieve/internal/criteria"
	"modsieve/internal/platform/config"
	"modsieve/internal/platform/httpserver"
	"modsieve/internal/platform/logger"
	platformmetrics "modsieve/internal/platform/metrics"
	platformredis "modsieve/internal/platform/redis"
	"modsieve/internal/record"
	"modsieve/internal/run"
	httptransport "modsieve/internal/transport/http"
)

// observingEvaluator records each activity into the local history store after
// evaluation, so repeat and recent rules see prior submissions without
// counting the activity under evaluation twice.
type observingEvaluator struct {
	store *local.Store
	orch  *run.Orchestrator
}

func (e *observingEvaluator) Evaluate(ctx context.Context, act *activity.Activity) (*run.Report, error) {
	report, err := e.orch.Evaluate(ctx, act)
	if err == nil {
		e.store.Observe(act)
	}
	return report, err
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Evaluation logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	suiteCfg, err := run.LoadFile(cfg.ConfigPath)
	if err != nil {
		log.Error("loading suite configuration failed", "path", cfg.ConfigPath, "error", err)
		os.Exit(1)
	}

	// Result cache: Redis when configured, in-process otherwise.
	var resultCache cache.ResultCache = cache.NewMemory()
	redisClient, err := platformredis.Connect(context.Background(), cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		resultCache = cache.NewRedis(redisClient)
		defer redisClient.Close()
		log.Info("result cache backed by redis")
	}

	// Recorder destinations: memory always, kafka when seeds are configured.
	memSink := record.NewMemorySink(0)
	sinks := map[string]record.Sink{"memory": memSink}
	if len(cfg.Kafka.Seeds) > 0 {
		kafkaSink, err := record.NewKafkaSink(cfg.Kafka.Seeds, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka producer setup failed", "error", err)
			os.Exit(1)
		}
		sinks["kafka"] = kafkaSink
		log.Info("recording results to kafka", "topic", cfg.Kafka.Topic)
	}
	recorder := record.NewRecorder(sinks, log)
	defer recorder.Close()

	store := local.NewStore(0)
	deps := check.Deps{
		Matcher:         criteria.NewMatcher(store, criteria.WithLogger(log)),
		Provider:        store,
		Scorer:          local.NullScorer{},
		Moderator:       local.NewLogModerator(log),
		Cache:           resultCache,
		Metrics:         checkmetrics.New(),
		Logger:          log,
		DefaultCacheTTL: cfg.CacheTTL,
	}

	orch, err := run.New(suiteCfg, deps,
		run.WithRecorder(recorder),
		run.WithLogger(log),
		run.WithTimeout(cfg.EvalTimeout),
		run.WithDryRun(cfg.DryRun),
	)
	if err != nil {
		log.Error("building evaluation suite failed", "error", err)
		os.Exit(1)
	}

	handler := httptransport.New(&observingEvaluator{store: store, orch: orch}, store, memSink, log)
	router := httptransport.NewRouter(handler, log, platformmetrics.New())

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting modsieve", "addr", cfg.Addr, "runs", len(suiteCfg.Runs), "dry_run", cfg.DryRun)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
