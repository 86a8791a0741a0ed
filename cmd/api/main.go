package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-flower-shop/internal/config"
	"github.com/ariefcatur/go-flower-shop/internal/httpx"
	kafkax "github.com/ariefcatur/go-flower-shop/internal/kafka"
	"github.com/ariefcatur/go-flower-shop/internal/orders"
	"github.com/ariefcatur/go-flower-shop/internal/postgres"
	"github.com/ariefcatur/go-flower-shop/internal/redisx"
	"github.com/ariefcatur/go-flower-shop/internal/stats"
	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unit, err := currency.ParseISO(cfg.Currency)
	if err != nil {
		log.Fatalf("SHOP_CURRENCY %q: %v", cfg.Currency, err)
	}

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Fatalf("db migrate: %v", err)
		}
	}

	// Redis: sessions + stats cache
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Printf("redis unavailable at start: %v", err)
	}

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024)
	prod.Start(ctx)

	auth := &httpx.RedisSessions{Redis: rdb}
	router := httpx.NewRouter()

	oh := &httpx.OrdersHandler{
		Orders: &orders.Service{
			Store:         &orders.Repo{DB: db},
			Events:        prod,
			Currency:      unit,
			DeliveryPrice: cfg.DeliveryPrice,
			ServiceName:   cfg.ServiceName,
		},
		Auth: auth,
	}
	oh.Register(router)

	sh := &httpx.StatsHandler{
		Stats: &stats.Service{
			Store:      &stats.Repo{DB: db},
			Cache:      &stats.RedisCache{Redis: rdb, TTL: cfg.StatsCacheTTL},
			ChangeMode: cfg.StatsChangeMode,
		},
		Auth: auth,
	}
	sh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // no more events once requests are drained
	prod.WaitClosed() // flush buffered events
}
