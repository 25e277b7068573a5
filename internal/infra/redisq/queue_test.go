package redisq

import (
	"context"
	"testing"
	"time"

	"boardrelay/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeList is an in-memory stand-in for the backing redis list.
type fakeList struct {
	vals []string
}

func (f *fakeList) RPush(_ context.Context, _ string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			f.vals = append(f.vals, string(b))
		case string:
			f.vals = append(f.vals, b)
		}
	}
	return redis.NewIntResult(int64(len(f.vals)), nil)
}

func (f *fakeList) LPop(_ context.Context, _ string) *redis.StringCmd {
	if len(f.vals) == 0 {
		return redis.NewStringResult("", redis.Nil)
	}
	v := f.vals[0]
	f.vals = f.vals[1:]
	return redis.NewStringResult(v, nil)
}

func testQueue() (*DeliveryQueue, *fakeList) {
	f := &fakeList{}
	return &DeliveryQueue{rdb: f, key: "webhook:deliveries"}, f
}

func delivery(attempts int) domain.QueuedWebhookDelivery {
	return domain.QueuedWebhookDelivery{
		BoardID:      "b-1",
		WebhookID:    "wh-1",
		PayloadID:    "p-1",
		PayloadEvent: "push",
		ReceivedAt:   time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC),
		Attempts:     attempts,
	}
}

func TestQueueRoundTrip(t *testing.T) {
	for _, attempts := range []int{0, 1, 2} {
		q, _ := testQueue()
		ctx := context.Background()

		want := delivery(attempts)
		require.NoError(t, q.Enqueue(ctx, want))

		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, want.BoardID, got.BoardID)
		require.Equal(t, want.WebhookID, got.WebhookID)
		require.Equal(t, want.PayloadID, got.PayloadID)
		require.Equal(t, want.PayloadEvent, got.PayloadEvent)
		require.Equal(t, attempts, got.Attempts)
		require.True(t, want.ReceivedAt.Equal(got.ReceivedAt))
	}
}

func TestDequeueEmpty(t *testing.T) {
	q, _ := testQueue()

	got, err := q.Dequeue(context.Background())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRequeueGoesToTail(t *testing.T) {
	q, _ := testQueue()
	ctx := context.Background()

	first := delivery(0)
	second := delivery(0)
	second.PayloadID = "p-2"
	require.NoError(t, q.Enqueue(ctx, first))
	require.NoError(t, q.Enqueue(ctx, second))

	popped, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "p-1", popped.PayloadID)

	requeued, err := q.RequeueIfFailed(ctx, *popped)
	require.NoError(t, err)
	require.True(t, requeued)

	// the pending item comes before the requeued one
	next, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "p-2", next.PayloadID)

	last, err := q.Dequeue(ctx)
	require.NoError(t, err)
	require.Equal(t, "p-1", last.PayloadID)
	require.Equal(t, 1, last.Attempts)
}

func TestRequeueRespectsRetryCap(t *testing.T) {
	cases := []struct {
		attempts int
		requeued bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{3, false},
		{4, false},
	}
	for _, tc := range cases {
		q, f := testQueue()
		ctx := context.Background()

		ok, err := q.RequeueIfFailed(ctx, delivery(tc.attempts))
		require.NoError(t, err)
		require.Equal(t, tc.requeued, ok, "attempts=%d", tc.attempts)

		if !tc.requeued {
			require.Empty(t, f.vals)
			continue
		}
		got, err := q.Dequeue(ctx)
		require.NoError(t, err)
		require.Equal(t, tc.attempts+1, got.Attempts)
	}
}

func TestRepeatedRequeuesTerminate(t *testing.T) {
	q, f := testQueue()
	ctx := context.Background()

	d := delivery(0)
	failures := 0
	for {
		failures++
		ok, err := q.RequeueIfFailed(ctx, d)
		require.NoError(t, err)
		if !ok {
			break
		}
		next, err := q.Dequeue(ctx)
		require.NoError(t, err)
		d = *next
	}

	require.Equal(t, domain.RetryCap, failures)
	require.Empty(t, f.vals)
}
