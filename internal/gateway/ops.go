package gateway

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// SendMessage posts a message into an agent session. Each call carries a
// fresh idempotency key.
func (c *Client) SendMessage(ctx context.Context, sessionKey, message string, deliver bool) (json.RawMessage, error) {
	return c.Call(ctx, "chat.send", map[string]interface{}{
		"sessionKey":     sessionKey,
		"message":        message,
		"deliver":        deliver,
		"idempotencyKey": uuid.NewString(),
	})
}

// History fetches session chat history. A limit <= 0 leaves the server
// default in place.
func (c *Client) History(ctx context.Context, sessionKey string, limit int) (json.RawMessage, error) {
	params := map[string]interface{}{"sessionKey": sessionKey}
	if limit > 0 {
		params["limit"] = limit
	}
	return c.Call(ctx, "chat.history", params)
}

func (c *Client) DeleteSession(ctx context.Context, sessionKey string) (json.RawMessage, error) {
	return c.Call(ctx, "sessions.delete", map[string]interface{}{"key": sessionKey})
}

// EnsureSession creates or updates a session, optionally labelling it.
func (c *Client) EnsureSession(ctx context.Context, sessionKey, label string) (json.RawMessage, error) {
	params := map[string]interface{}{"key": sessionKey}
	if label != "" {
		params["label"] = label
	}
	return c.Call(ctx, "sessions.patch", params)
}
