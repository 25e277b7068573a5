package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"boardrelay/internal/domain"
	"boardrelay/internal/ports"

	"github.com/redis/go-redis/v9"
)

// lister is the slice of redis list commands the queue needs. *redis.Client
// satisfies it; tests substitute an in-memory list.
type lister interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LPop(ctx context.Context, key string) *redis.StringCmd
}

var _ ports.DeliveryQueue = (*DeliveryQueue)(nil)

// DeliveryQueue is a single durable redis list holding JSON-encoded
// deliveries. RPUSH/LPOP are atomic single-element operations, so concurrent
// producers and consumers need no further coordination. Items never requeued
// keep strict FIFO order; a requeued item goes back to the tail.
type DeliveryQueue struct {
	rdb lister
	key string
}

func NewDeliveryQueue(c *Client, name string) *DeliveryQueue {
	return &DeliveryQueue{rdb: c.Rdb, key: name}
}

func (q *DeliveryQueue) Enqueue(ctx context.Context, d domain.QueuedWebhookDelivery) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode delivery: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("push delivery: %w", err)
	}
	return nil
}

func (q *DeliveryQueue) Dequeue(ctx context.Context) (*domain.QueuedWebhookDelivery, error) {
	raw, err := q.rdb.LPop(ctx, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop delivery: %w", err)
	}
	var d domain.QueuedWebhookDelivery
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("decode delivery: %w", err)
	}
	return &d, nil
}

// RequeueIfFailed enforces the retry cap: a delivery that would make its
// RetryCap-th attempt is dropped instead of pushed back.
func (q *DeliveryQueue) RequeueIfFailed(ctx context.Context, d domain.QueuedWebhookDelivery) (bool, error) {
	if d.Attempts+1 >= domain.RetryCap {
		return false, nil
	}
	d.Attempts++
	if err := q.Enqueue(ctx, d); err != nil {
		return false, err
	}
	return true, nil
}
