package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"boardrelay/internal/domain"
	"boardrelay/internal/metrics"
	"boardrelay/internal/ports"

	"github.com/rs/zerolog/log"
)

const eventHeader = "X-Webhook-Event"

// Flusher drains the delivery queue and performs the actual HTTP deliveries.
// Failed deliveries go back to the tail with attempts+1 until the retry cap
// drops them; a drop is terminal and must stay observable, so it is logged
// at error level and counted.
type Flusher struct {
	Q     ports.DeliveryQueue
	Store ports.WebhookStore
	HTTP  *http.Client
}

type FlushStats struct {
	Delivered int `json:"delivered"`
	Requeued  int `json:"requeued"`
	Dropped   int `json:"dropped"`
}

// Flush runs one pass: dequeue until empty, delivering each item. Delivery
// failures become requeue decisions, never silent swallows; only a storage
// fault ends the pass early with an error.
func (f Flusher) Flush(ctx context.Context) (FlushStats, error) {
	logger := log.Ctx(ctx)
	var stats FlushStats
	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		d, err := f.Q.Dequeue(ctx)
		if err != nil {
			return stats, err
		}
		if d == nil {
			return stats, nil
		}

		if err := f.deliver(ctx, *d); err != nil {
			requeued, qerr := f.Q.RequeueIfFailed(ctx, *d)
			if qerr != nil {
				return stats, qerr
			}
			if requeued {
				stats.Requeued++
				metrics.WebhookDeliveriesTotal.WithLabelValues("requeued").Inc()
				logger.Warn().Err(err).
					Str("webhook_id", d.WebhookID).
					Int("attempts", d.Attempts+1).
					Msg("webhook delivery failed, requeued")
			} else {
				stats.Dropped++
				metrics.WebhookDeliveriesTotal.WithLabelValues("dropped").Inc()
				metrics.WebhookDropsTotal.Inc()
				logger.Error().Err(err).
					Str("board_id", d.BoardID).
					Str("webhook_id", d.WebhookID).
					Str("payload_id", d.PayloadID).
					Int("attempts", d.Attempts).
					Msg("webhook delivery dropped at retry cap")
			}
			continue
		}

		stats.Delivered++
		metrics.WebhookDeliveriesTotal.WithLabelValues("delivered").Inc()
	}
}

func (f Flusher) deliver(ctx context.Context, d domain.QueuedWebhookDelivery) error {
	whr, err := f.Store.Load(ctx, d)
	if err != nil {
		return fmt.Errorf("load webhook %s: %w", d.WebhookID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, whr.URL, bytes.NewReader(whr.Body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(eventHeader, d.PayloadEvent)

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned %s", resp.Status)
	}
	return nil
}
