package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/go-flower-shop/internal/kafka"
	"github.com/ariefcatur/go-flower-shop/internal/orders"
	"github.com/ariefcatur/go-flower-shop/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Invalidator drops cached reports whenever an order is placed.
type Invalidator struct {
	Redis       *redis.Client
	ServiceName string
}

// HandleOrderPlaced is installed as the consumer handler for orders.TopicOrderPlaced.
// Undecodable messages are reported as kafkax.ErrMalformed; Redis failures are returned
// as is so the consumer retries them.
func (i *Invalidator) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w: %w", kafkax.ErrMalformed, err)
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, i.ServiceName, env.EventID)
	fresh, err := i.Redis.SetNX(ctx, dkey, "1", redisx.TTLDedup).Result()
	if err != nil {
		return fmt.Errorf("redis setnx %s: %w", dkey, err)
	}
	if !fresh {
		return nil
	}

	version, err := i.Redis.Incr(ctx, redisx.KeyStatsVersion).Result()
	if err != nil {
		// release the dedup key so the consumer's retry is not mistaken for a duplicate
		_ = i.Redis.Del(ctx, dkey).Err()
		return fmt.Errorf("redis incr %s: %w", redisx.KeyStatsVersion, err)
	}
	log.Printf("stats cache v%d: order %d on %s (%d lines)", version, p.OrderID, p.Date, len(p.Items))
	return nil
}
