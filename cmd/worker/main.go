package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-coffee-shop/internal/config"
	kafkax "github.com/ariefcatur/go-coffee-shop/internal/kafka"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/popularity"
	"github.com/ariefcatur/go-coffee-shop/internal/redisx"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logging.MustNew(cfg.ServiceName+"-worker", cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if len(cfg.KafkaBrokers) == 0 || cfg.RedisAddr == "" {
		log.Fatal("worker needs KAFKA_BROKERS and REDIS_ADDR")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := redisx.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	proj := &popularity.Projector{
		Board:    redisx.NewPopularityBoard(rdb),
		Redis:    rdb,
		Consumer: cfg.WorkerGroup,
		Metrics:  m,
	}

	// Metrics endpoint
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("metrics listen", zap.Error(err))
		}
	}()

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, shop.TopicOrders, cfg.WorkerConcurrency, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("popularity consumer started",
			zap.String("group", cfg.WorkerGroup),
			zap.String("topic", shop.TopicOrders),
			zap.Int("workers", cfg.WorkerConcurrency))
		if err := cons.Start(ctx, proj.HandleOrderEvent); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	<-done

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = metricsSrv.Shutdown(ctx2)
}
