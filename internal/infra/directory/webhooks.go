package directory

import (
	"context"
	"errors"
	"fmt"

	"boardrelay/internal/domain"
	"boardrelay/internal/infra/redisq"
	"boardrelay/internal/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.WebhookStore = (*Webhooks)(nil)

// Webhooks resolves queued deliveries to concrete HTTP requests from the
// mirrored webhook:<id> hashes and webhook:payload:<id> bodies.
type Webhooks struct {
	rdb *redis.Client
}

func NewWebhooks(c *redisq.Client) *Webhooks {
	return &Webhooks{rdb: c.Rdb}
}

func (w *Webhooks) Load(ctx context.Context, d domain.QueuedWebhookDelivery) (domain.WebhookRequest, error) {
	url, err := w.rdb.HGet(ctx, "webhook:"+d.WebhookID, "url").Result()
	if errors.Is(err, redis.Nil) || url == "" {
		return domain.WebhookRequest{}, fmt.Errorf("webhook %s has no endpoint url", d.WebhookID)
	}
	if err != nil {
		return domain.WebhookRequest{}, fmt.Errorf("load webhook %s: %w", d.WebhookID, err)
	}

	body, err := w.rdb.Get(ctx, "webhook:payload:"+d.PayloadID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.WebhookRequest{}, fmt.Errorf("payload %s not found", d.PayloadID)
	}
	if err != nil {
		return domain.WebhookRequest{}, fmt.Errorf("load payload %s: %w", d.PayloadID, err)
	}

	return domain.WebhookRequest{URL: url, Body: []byte(body)}, nil
}
