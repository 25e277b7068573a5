package domain

import "time"

// RetryCap is the maximum number of delivery attempts for a queued webhook
// delivery. Once attempts+1 reaches the cap the delivery is dropped for good.
const RetryCap = 3

// QueuedWebhookDelivery is the record serialized onto the delivery queue.
// ReceivedAt marks the original enqueue and never changes across requeues;
// Attempts starts at 0 and grows by exactly 1 per requeue.
type QueuedWebhookDelivery struct {
	BoardID      string    `json:"board_id"`
	WebhookID    string    `json:"webhook_id"`
	PayloadID    string    `json:"payload_id"`
	PayloadEvent string    `json:"payload_event"`
	ReceivedAt   time.Time `json:"received_at"`
	Attempts     int       `json:"attempts"`
}

// WebhookRequest is a delivery resolved to a concrete HTTP call.
type WebhookRequest struct {
	URL  string
	Body []byte
}
