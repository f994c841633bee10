// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/monopoly/internal/models"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list that holds handled game actions.
const DefaultQueueName = "monopoly_actions"

// ActionLog pushes action records onto a Redis list for the historian to drain.
type ActionLog struct {
	client *redis.Client
	queue  string
}

// Connect dials Redis and pings it before returning.
func Connect(ctx context.Context, addr string, db int, queue string) (*ActionLog, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return New(client, queue), nil
}

// New wraps an existing client. An empty queue uses DefaultQueueName.
func New(client *redis.Client, queue string) *ActionLog {
	if queue == "" {
		queue = DefaultQueueName
	}
	return &ActionLog{client: client, queue: queue}
}

// Queue returns the list name records are pushed to.
func (l *ActionLog) Queue() string { return l.queue }

// Record serializes rec to JSON and pushes it to the tail of the queue.
func (l *ActionLog) Record(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action record: %w", err)
	}
	if err := l.client.RPush(ctx, l.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", l.queue, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. It returns ok=false when the
// wait timed out.
func (l *ActionLog) Pop(ctx context.Context, timeout time.Duration) (models.ActionRecord, bool, error) {
	var rec models.ActionRecord
	res, err := l.client.BLPop(ctx, timeout, l.queue).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("BLPop: %w", err)
	}
	if len(res) < 2 {
		return rec, false, nil
	}
	// res[0] is the queue name and res[1] the payload.
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return rec, false, fmt.Errorf("invalid action record: %w", err)
	}
	return rec, true, nil
}

// Len reports how many records are waiting.
func (l *ActionLog) Len(ctx context.Context) (int64, error) {
	return l.client.LLen(ctx, l.queue).Result()
}

func (l *ActionLog) Close() error {
	return l.client.Close()
}
