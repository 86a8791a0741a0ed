package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-flower-shop/internal/config"
	kafkax "github.com/ariefcatur/go-flower-shop/internal/kafka"
	"github.com/ariefcatur/go-flower-shop/internal/orders"
	"github.com/ariefcatur/go-flower-shop/internal/redisx"
	"github.com/ariefcatur/go-flower-shop/internal/stats"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	if err := redisx.Ping(ctx, rdb); err != nil {
		log.Fatalf("redis: %v", err)
	}

	inv := &stats.Invalidator{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-stats",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WorkerGroup, orders.TopicOrderPlaced, cfg.WorkerThreads)

	var consErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Printf("stats worker started: group=%s topic=%s workers=%d", cfg.WorkerGroup, orders.TopicOrderPlaced, cfg.WorkerThreads)
		consErr = cons.Start(ctx, inv.HandleOrderPlaced)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Println("shutting down consumer...")
	case <-done:
	}
	cancel()
	<-done
	if consErr != nil {
		// uncommitted offset is redelivered once the worker is restarted
		log.Fatalf("consumer exit: %v", consErr)
	}
}
