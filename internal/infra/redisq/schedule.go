package redisq

import (
	"context"
	"errors"
	"time"

	"boardrelay/pkg/backoff"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// hashes is the slice of redis hash commands the schedule registry needs.
type hashes interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Schedule keeps the recurring flush job idempotent across restarts and
// deploys. Registration lives in a redis hash keyed by the job identity; the
// newest owner token wins, and a runner that finds itself superseded stops
// instead of running alongside its replacement.
type Schedule struct {
	rdb      hashes
	JobID    string
	Interval time.Duration

	// StartDelay is the wait before the first pass.
	StartDelay time.Duration
}

const defaultStartDelay = 5 * time.Second

func NewSchedule(c *Client, jobID string, interval time.Duration) *Schedule {
	return &Schedule{rdb: c.Rdb, JobID: jobID, Interval: interval, StartDelay: defaultStartDelay}
}

func (s *Schedule) key() string { return "schedule:" + s.JobID }

// Register claims the job identity with a fresh owner token, replacing any
// previous registration.
func (s *Schedule) Register(ctx context.Context) (string, error) {
	token := uuid.NewString()
	prev, err := s.rdb.HGet(ctx, s.key(), "owner").Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	if prev != "" {
		log.Ctx(ctx).Info().Str("job", s.JobID).Msg("replacing existing flush schedule")
	}
	err = s.rdb.HSet(ctx, s.key(), map[string]interface{}{
		"owner":         token,
		"interval_s":    int(s.Interval / time.Second),
		"registered_at": time.Now().UTC().Format(time.RFC3339),
	}).Err()
	if err != nil {
		return "", err
	}
	return token, nil
}

// Run fires the flush pass after StartDelay and then every Interval, for as
// long as this runner still owns the registration. Pass errors back off with
// jitter before the next try instead of waiting a whole interval.
func (s *Schedule) Run(ctx context.Context, token string, flush func(context.Context) error) error {
	timer := time.NewTimer(s.StartDelay)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		owner, err := s.rdb.HGet(ctx, s.key(), "owner").Result()
		if err == nil && owner != token {
			log.Ctx(ctx).Info().Str("job", s.JobID).Msg("flush schedule superseded, stopping")
			return nil
		}

		if err := flush(ctx); err != nil {
			failures++
			delay := backoff.ExponentialJitter(time.Second, s.Interval, failures)
			log.Ctx(ctx).Error().Err(err).Dur("retry_in", delay).Msg("flush pass failed")
			timer.Reset(delay)
			continue
		}
		failures = 0
		timer.Reset(s.Interval)
	}
}
