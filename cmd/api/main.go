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

	"github.com/ariefcatur/go-coffee-shop/internal/auth"
	"github.com/ariefcatur/go-coffee-shop/internal/cart"
	"github.com/ariefcatur/go-coffee-shop/internal/catalog"
	"github.com/ariefcatur/go-coffee-shop/internal/config"
	"github.com/ariefcatur/go-coffee-shop/internal/firestore"
	"github.com/ariefcatur/go-coffee-shop/internal/httpx"
	kafkax "github.com/ariefcatur/go-coffee-shop/internal/kafka"
	"github.com/ariefcatur/go-coffee-shop/internal/logging"
	"github.com/ariefcatur/go-coffee-shop/internal/metrics"
	"github.com/ariefcatur/go-coffee-shop/internal/mongo"
	"github.com/ariefcatur/go-coffee-shop/internal/orders"
	"github.com/ariefcatur/go-coffee-shop/internal/postgres"
	"github.com/ariefcatur/go-coffee-shop/internal/redisx"
	"github.com/ariefcatur/go-coffee-shop/internal/shop"
	"github.com/ariefcatur/go-coffee-shop/internal/store/memory"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logging.MustNew(cfg.ServiceName, cfg.Env)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("store open", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	log.Info("store ready", zap.String("driver", cfg.StoreDriver))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Redis (optional)
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redisx.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
	}

	// Kafka producer (optional)
	var events shop.Publisher = shop.NopPublisher{}
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, 1024, log)
		prod.Start(ctx)
		events = kafkax.EventPublisher{Producer: prod}
	}

	cat := &catalog.Service{Store: st.Coffees(), Events: events, Metrics: m, Producer: cfg.ServiceName}
	popular := &httpx.PopularHandler{Catalog: cat}
	if rdb != nil {
		cat.Cache = &redisx.CoffeeCache{RDB: rdb, Source: st.Coffees(), TTL: cfg.CacheTTL, Metrics: m}
		popular.Board = redisx.NewPopularityBoard(rdb)
	}
	ord := &orders.Service{Repo: st.Orders(), Inventory: cat, Events: events, Metrics: m, Producer: cfg.ServiceName}
	crt := &cart.Service{Repo: st.Carts(), Enricher: cat, Metrics: m}

	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.ServiceName)
	guard := &httpx.Guard{Sessions: sessions, Policy: httpx.Policy(cfg.AuthPolicy)}
	authH := &httpx.AuthHandler{Sessions: sessions, Guard: guard, CookieSecure: cfg.CookieSecure}
	if cfg.IdentityProvider == config.IdentityFirebase {
		v, err := auth.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.FirebaseKey)
		if err != nil {
			log.Fatal("firebase init", zap.Error(err))
		}
		authH.Identity = v
	}

	router := httpx.NewRouter(httpx.RouterOptions{Log: log, Metrics: m, Gatherer: reg, CORSOrigins: cfg.CORSOrigins})
	authH.Register(router)
	(&httpx.CoffeesHandler{Catalog: cat, Guard: guard}).Register(router)
	(&httpx.OrdersHandler{Orders: ord, Guard: guard}).Register(router)
	(&httpx.CartHandler{Cart: crt, Guard: guard}).Register(router)
	popular.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("auth_policy", cfg.AuthPolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close() // flush inbox and close the writer
		cancel()
		prod.WaitClosed()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := st.Close(ctx2); err != nil {
		log.Warn("store close", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg config.Config) (shop.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.PostgresDSN)
	case config.DriverFirestore:
		return firestore.Open(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	case config.DriverMemory:
		return memory.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
