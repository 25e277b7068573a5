package usecase

import (
	"context"
	"errors"
	"time"

	"boardrelay/internal/domain"
	"boardrelay/internal/ports"
)

// Enqueuer stamps and enqueues fresh webhook deliveries.
type Enqueuer struct {
	Q ports.DeliveryQueue
}

var errMissingID = errors.New("board_id, webhook_id and payload_id are required")

func (e Enqueuer) Enqueue(ctx context.Context, boardID, webhookID, payloadID, event string) (domain.QueuedWebhookDelivery, error) {
	if boardID == "" || webhookID == "" || payloadID == "" {
		return domain.QueuedWebhookDelivery{}, errMissingID
	}
	d := domain.QueuedWebhookDelivery{
		BoardID:      boardID,
		WebhookID:    webhookID,
		PayloadID:    payloadID,
		PayloadEvent: event,
		ReceivedAt:   time.Now().UTC(),
	}
	if err := e.Q.Enqueue(ctx, d); err != nil {
		return domain.QueuedWebhookDelivery{}, err
	}
	return d, nil
}
