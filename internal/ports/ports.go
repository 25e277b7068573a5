package ports

import (
	"context"
	"encoding/json"

	"boardrelay/internal/domain"
)

// DeliveryQueue is the durable FIFO of pending webhook deliveries.
type DeliveryQueue interface {
	// Enqueue pushes a delivery to the tail. A storage outage comes back as
	// an error for the caller to drop or escalate, never as a panic.
	Enqueue(ctx context.Context, d domain.QueuedWebhookDelivery) error
	// Dequeue pops the head, or returns (nil, nil) when the queue is empty.
	// The caller owns a popped delivery until it requeues or discards it.
	Dequeue(ctx context.Context) (*domain.QueuedWebhookDelivery, error)
	// RequeueIfFailed pushes the delivery back to the tail with attempts+1,
	// or reports false when the retry cap would be exceeded.
	RequeueIfFailed(ctx context.Context, d domain.QueuedWebhookDelivery) (bool, error)
}

// Directory looks up org records in the system of record.
type Directory interface {
	ProjectMembers(ctx context.Context, projectID int64) ([]domain.ProjectMember, error)
	Employees(ctx context.Context, ids []int64) ([]domain.Employee, error)
}

// WebhookStore resolves a queued delivery to the endpoint URL and payload
// body held by the system of record.
type WebhookStore interface {
	Load(ctx context.Context, d domain.QueuedWebhookDelivery) (domain.WebhookRequest, error)
}

// AgentGateway sends messages into agent sessions on the gateway service.
type AgentGateway interface {
	// Configured reports whether the gateway has a URL to dial; an
	// unconfigured gateway turns dispatch into a no-op.
	Configured() bool
	SendMessage(ctx context.Context, sessionKey, message string, deliver bool) (json.RawMessage, error)
}
