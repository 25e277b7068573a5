package usecase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"boardrelay/internal/domain"

	"github.com/stretchr/testify/require"
)

// memQueue implements the delivery queue contract in memory.
type memQueue struct {
	items []domain.QueuedWebhookDelivery
}

func (q *memQueue) Enqueue(_ context.Context, d domain.QueuedWebhookDelivery) error {
	q.items = append(q.items, d)
	return nil
}

func (q *memQueue) Dequeue(_ context.Context) (*domain.QueuedWebhookDelivery, error) {
	if len(q.items) == 0 {
		return nil, nil
	}
	d := q.items[0]
	q.items = q.items[1:]
	return &d, nil
}

func (q *memQueue) RequeueIfFailed(ctx context.Context, d domain.QueuedWebhookDelivery) (bool, error) {
	if d.Attempts+1 >= domain.RetryCap {
		return false, nil
	}
	d.Attempts++
	return true, q.Enqueue(ctx, d)
}

// memStore points every delivery at the same endpoint.
type memStore struct {
	url string
}

func (s *memStore) Load(_ context.Context, d domain.QueuedWebhookDelivery) (domain.WebhookRequest, error) {
	return domain.WebhookRequest{URL: s.url, Body: []byte(`{"event":"` + d.PayloadEvent + `"}`)}, nil
}

func queued(attempts int) domain.QueuedWebhookDelivery {
	return domain.QueuedWebhookDelivery{
		BoardID:      "b-1",
		WebhookID:    "wh-1",
		PayloadID:    "p-1",
		PayloadEvent: "push",
		ReceivedAt:   time.Now().UTC(),
		Attempts:     attempts,
	}
}

func TestFlushDeliversAndDrains(t *testing.T) {
	var hits int32
	var gotEvent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		gotEvent.Store(r.Header.Get("X-Webhook-Event"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	q := &memQueue{}
	require.NoError(t, q.Enqueue(context.Background(), queued(0)))
	require.NoError(t, q.Enqueue(context.Background(), queued(0)))

	f := Flusher{Q: q, Store: &memStore{url: srv.URL}}
	stats, err := f.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, FlushStats{Delivered: 2}, stats)
	require.EqualValues(t, 2, atomic.LoadInt32(&hits))
	require.Equal(t, "push", gotEvent.Load())
	require.Empty(t, q.items)
}

func TestFlushRequeuesFailedDelivery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	q := &memQueue{}
	require.NoError(t, q.Enqueue(context.Background(), queued(0)))

	f := Flusher{Q: q, Store: &memStore{url: srv.URL}}
	stats, err := f.Flush(context.Background())
	require.NoError(t, err)

	// the requeued item was dequeued again within the same pass and
	// requeued once more, then dropped at the cap
	require.Equal(t, FlushStats{Requeued: 2, Dropped: 1}, stats)
	require.Empty(t, q.items)
}

func TestFlushDropsAtRetryCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := &memQueue{}
	require.NoError(t, q.Enqueue(context.Background(), queued(2)))

	f := Flusher{Q: q, Store: &memStore{url: srv.URL}}
	stats, err := f.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, FlushStats{Dropped: 1}, stats)

	// nothing left: the delivery is gone for good
	d, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.Nil(t, d)
}

func TestFlushUnreachableEndpoint(t *testing.T) {
	q := &memQueue{}
	require.NoError(t, q.Enqueue(context.Background(), queued(0)))

	f := Flusher{
		Q:     q,
		Store: &memStore{url: "http://127.0.0.1:1"},
		HTTP:  &http.Client{Timeout: time.Second},
	}
	stats, err := f.Flush(context.Background())
	require.NoError(t, err)
	require.Equal(t, FlushStats{Requeued: 2, Dropped: 1}, stats)
}

func TestEnqueuerStampsDelivery(t *testing.T) {
	q := &memQueue{}
	e := Enqueuer{Q: q}

	d, err := e.Enqueue(context.Background(), "b-1", "wh-1", "p-1", "push")
	require.NoError(t, err)
	require.Equal(t, 0, d.Attempts)
	require.False(t, d.ReceivedAt.IsZero())
	require.Equal(t, time.UTC, d.ReceivedAt.Location())
	require.Len(t, q.items, 1)
}

func TestEnqueuerRejectsMissingIDs(t *testing.T) {
	e := Enqueuer{Q: &memQueue{}}

	_, err := e.Enqueue(context.Background(), "", "wh-1", "p-1", "push")
	require.Error(t, err)
}
