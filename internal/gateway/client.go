package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"boardrelay/internal/ports"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	protocolVersion = 3
	challengeEvent  = "connect.challenge"

	// defaultChallengeWait bounds only the wait for an unsolicited first
	// frame after connect; its absence means no challenge, not an error.
	defaultChallengeWait = 2 * time.Second
)

// Config is the per-board gateway configuration. URL must be set before any
// call; Token, when present, rides along as a query parameter and in the
// handshake auth params.
type Config struct {
	URL   string
	Token string
}

var _ ports.AgentGateway = (*Client)(nil)

// Client speaks the gateway's framed request/response protocol. Every call
// opens its own connection, optionally answers the connect challenge, issues
// exactly one correlated request and tears the connection down; there is no
// state shared between calls.
type Client struct {
	cfg           Config
	dialer        *websocket.Dialer
	challengeWait time.Duration
}

func New(cfg Config) *Client {
	return &Client{
		cfg:           cfg,
		dialer:        websocket.DefaultDialer,
		challengeWait: defaultChallengeWait,
	}
}

func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.URL) != ""
}

func (c *Client) buildURL() (string, error) {
	base := strings.TrimSpace(c.cfg.URL)
	if base == "" {
		return "", ErrNotConfigured
	}
	if c.cfg.Token == "" {
		return base, nil
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", wrapErr(err)
	}
	u.RawQuery = url.Values{"token": {c.cfg.Token}}.Encode()
	return u.String(), nil
}

// frame is every inbound shape the gateway emits: res frames, event frames
// and the legacy id-keyed result/error shape.
type frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Event   string          `json:"event"`
	OK      *bool           `json:"ok"`
	Payload json.RawMessage `json:"payload"`
	Result  json.RawMessage `json:"result"`
	Error   *frameError     `json:"error"`
}

type frameError struct {
	Message string `json:"message"`
}

func (f *frame) errMessage() string {
	if f.Error == nil || f.Error.Message == "" {
		return "gateway error"
	}
	return f.Error.Message
}

type inbound struct {
	frame frame
	err   error
}

// Call performs one method call against the gateway. ErrNotConfigured fires
// before any network attempt; everything else comes back as a
// *ProtocolError. The response-correlation loop has no timeout of its own,
// so the caller's ctx is the only bound on the wait.
func (c *Client) Call(ctx context.Context, method string, params map[string]interface{}) (json.RawMessage, error) {
	target, err := c.buildURL()
	if err != nil {
		return nil, err
	}

	conn, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer conn.Close()

	// One reader goroutine owns the socket reads; closing the conn on
	// return is what terminates it.
	frames := make(chan inbound)
	done := make(chan struct{})
	defer close(done)
	go readFrames(conn, frames, done)

	if err := c.handshake(ctx, conn, frames); err != nil {
		return nil, wrapErr(err)
	}

	payload, err := request(ctx, conn, frames, method, params)
	if err != nil {
		return nil, wrapErr(err)
	}
	return payload, nil
}

func readFrames(conn *websocket.Conn, out chan<- inbound, done <-chan struct{}) {
	defer close(out)
	for {
		_, raw, err := conn.ReadMessage()
		var in inbound
		if err != nil {
			in.err = err
		} else if err := json.Unmarshal(raw, &in.frame); err != nil {
			in.err = err
		}
		select {
		case out <- in:
		case <-done:
			return
		}
		if in.err != nil {
			return
		}
	}
}

// handshake waits briefly for an unsolicited first frame. A timeout means
// the server offered no challenge; a non-challenge first frame is consumed
// and ignored; a connect.challenge frame is answered with a connect request
// that must succeed before the method call goes out.
func (c *Client) handshake(ctx context.Context, conn *websocket.Conn, frames <-chan inbound) error {
	timer := time.NewTimer(c.challengeWait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	case in, ok := <-frames:
		if !ok {
			return errors.New("connection closed during handshake")
		}
		if in.err != nil {
			return in.err
		}
		f := in.frame
		if f.Type != "event" || f.Event != challengeEvent {
			return nil
		}

		params := map[string]interface{}{
			"minProtocol": protocolVersion,
			"maxProtocol": protocolVersion,
			"client": map[string]interface{}{
				"id":       "gateway-client",
				"version":  "1.0.0",
				"platform": "web",
				"mode":     "ui",
			},
		}
		if c.cfg.Token != "" {
			params["auth"] = map[string]interface{}{"token": c.cfg.Token}
		}
		_, err := request(ctx, conn, frames, "connect", params)
		return err
	}
}

func request(ctx context.Context, conn *websocket.Conn, frames <-chan inbound, method string, params map[string]interface{}) (json.RawMessage, error) {
	if params == nil {
		params = map[string]interface{}{}
	}
	id := uuid.NewString()
	req := map[string]interface{}{
		"type":   "req",
		"id":     id,
		"method": method,
		"params": params,
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, err
	}
	return awaitResponse(ctx, frames, id)
}

// awaitResponse reads frames until one correlates with id, skipping anything
// else. Both the current res shape and the legacy id-keyed result/error
// shape are accepted.
func awaitResponse(ctx context.Context, frames <-chan inbound, id string) (json.RawMessage, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case in, ok := <-frames:
			if !ok {
				return nil, errors.New("connection closed awaiting response")
			}
			if in.err != nil {
				return nil, in.err
			}
			f := in.frame
			if f.ID != id {
				continue
			}
			if f.Type == "res" {
				if f.OK != nil && !*f.OK {
					return nil, &ProtocolError{Message: f.errMessage()}
				}
				return f.Payload, nil
			}
			if f.Error != nil {
				return nil, &ProtocolError{Message: f.errMessage()}
			}
			return f.Result, nil
		}
	}
}
