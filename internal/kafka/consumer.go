package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
)

var (
	// ErrHandlerFailed stops the consumer when a message still fails after its retries.
	// The offset is left uncommitted so the group redelivers it after a restart.
	ErrHandlerFailed = errors.New("handler failed")

	// ErrMalformed marks a message that can never be processed. It is logged and
	// committed without retries.
	ErrMalformed = errors.New("malformed message")
)

// Handler returns nil only when the message was processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	r       reader
	workers int
	backoff func() backoff.BackOff
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // commit synchronously after each handled message
	})
	return newConsumer(r, workers, defaultBackoff)
}

func newConsumer(r reader, workers int, b func() backoff.BackOff) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, backoff: b}
}

func defaultBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Start dispatches messages to a fixed pool of workers until ctx is cancelled or a
// message exhausts its retries. Messages of one partition always go to the same worker,
// so nothing after a failed offset is committed.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 4)
		wg.Add(1)
		go func(jobs <-chan kafka.Message) {
			defer wg.Done()
			for m := range jobs {
				if ctx.Err() != nil {
					continue
				}
				err := c.handle(ctx, h, m)
				if errors.Is(err, ErrMalformed) {
					log.Printf("skip %s/%d@%d: %v", m.Topic, m.Partition, m.Offset, err)
					err = nil
				}
				if err != nil {
					cancel(fmt.Errorf("%w: %s/%d@%d: %w", ErrHandlerFailed, m.Topic, m.Partition, m.Offset, err))
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					log.Printf("commit %s/%d@%d: %v", m.Topic, m.Partition, m.Offset, err)
				}
			}
		}(jobs[i])
	}

	err := c.fetch(ctx, jobs)
	for _, ch := range jobs {
		close(ch)
	}
	wg.Wait()

	if cause := context.Cause(ctx); errors.Is(cause, ErrHandlerFailed) {
		return cause
	}
	return err
}

func (c *Consumer) fetch(ctx context.Context, jobs []chan kafka.Message) error {
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs[m.Partition%len(jobs)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) error {
	op := func() error {
		err := h(ctx, m)
		if errors.Is(err, ErrMalformed) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Printf("handle %s/%d@%d: %v (retry in %s)", m.Topic, m.Partition, m.Offset, err, wait)
	}
	return backoff.RetryNotify(op, backoff.WithContext(c.backoff(), ctx), notify)
}
