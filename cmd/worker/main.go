// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/unclebandit/campaignhub-backend/internal/config"
	"github.com/unclebandit/campaignhub-backend/internal/queue"
)

// The worker consumes the API's domain events from RabbitMQ and keeps an
// audit log of them.
func main() {
	cfg, err := config.LoadTool()
	if err != nil {
		fatal(err)
	}
	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if cfg.AMQPURL == "" {
		fatal(errors.New("AMQP_URL is required"))
	}

	// Connect to RabbitMQ
	conn, err := queue.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		fatal(err)
	}
	defer conn.Close()

	deliveries, err := conn.Consume(cfg.AMQPQueue, "#")
	if err != nil {
		fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := newAuditor(logger)
	logger.Info("Worker running, waiting for events...", "queue", cfg.AMQPQueue, "exchange", cfg.AMQPExchange)

	err = queue.HandleDeliveries(ctx, deliveries, a.Handle, logger)
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
	logger.Info("Worker stopped", "counts", a.Summary())
}

// auditor logs every event and counts them per type.
type auditor struct {
	log    queue.Handler
	mu     sync.Mutex
	counts map[string]int
}

func newAuditor(logger *slog.Logger) *auditor {
	return &auditor{log: queue.LogSubscriber(logger), counts: map[string]int{}}
}

func (a *auditor) Handle(e queue.Event) error {
	if e.Type == "" {
		return fmt.Errorf("event without type for resource %d", e.ResourceID)
	}
	if err := a.log(e); err != nil {
		return err
	}

	a.mu.Lock()
	a.counts[e.Type]++
	a.mu.Unlock()
	return nil
}

// Summary lists the per-type counts as "type=n", sorted by type.
func (a *auditor) Summary() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.counts))
	for t, n := range a.counts {
		out = append(out, fmt.Sprintf("%s=%d", t, n))
	}
	sort.Strings(out)
	return out
}

func fatal(err error) {
	slog.Error("worker failed", "error", err)
	os.Exit(1)
}
