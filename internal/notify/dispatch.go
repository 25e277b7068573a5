package notify

import (
	"context"
	"sort"
	"time"

	"boardrelay/internal/domain"
	"boardrelay/internal/metrics"
	"boardrelay/internal/ports"

	"github.com/rs/zerolog/log"
)

const defaultSendTimeout = 15 * time.Second

// SendResult is the outcome of one per-recipient gateway send.
type SendResult struct {
	EmployeeID int64
	SessionKey string
	Err        error
}

// Dispatcher fans one domain event out to agent sessions. It is advisory
// infrastructure layered on top of the system of record: the write that
// triggered it is already committed, so nothing here ever propagates to the
// caller. All configuration is injected at construction.
type Dispatcher struct {
	Gateway   ports.AgentGateway
	Directory ports.Directory

	// BaseURL is the public API base agents act against.
	BaseURL string

	// SendTimeout bounds each per-recipient send; the gateway protocol has
	// no response-loop timeout of its own. Zero means the 15s default.
	SendTimeout time.Duration
}

// Dispatch resolves, filters and notifies the recipients of one event. Each
// send is isolated: one recipient failing is logged and does not abort the
// rest. An unconfigured gateway makes the whole dispatch a no-op.
func (d Dispatcher) Dispatch(ctx context.Context, nc domain.NotifyContext) []SendResult {
	logger := log.Ctx(ctx)
	if d.Gateway == nil || !d.Gateway.Configured() {
		logger.Warn().Str("event", string(nc.Event)).Msg("notify skipped: no gateway configured")
		return nil
	}

	ids, err := Resolve(ctx, d.Directory, nc)
	if err != nil {
		logger.Error().Err(err).Str("event", string(nc.Event)).Msg("notify: recipient resolution failed")
		return nil
	}
	recipients, err := d.recipients(ctx, ids)
	if err != nil {
		logger.Error().Err(err).Str("event", string(nc.Event)).Msg("notify: employee lookup failed")
		return nil
	}
	if len(recipients) == 0 {
		logger.Info().Str("event", string(nc.Event)).Msg("notify: no recipients with session keys")
		return nil
	}

	timeout := d.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	results := make([]SendResult, 0, len(recipients))
	for _, e := range recipients {
		res := SendResult{EmployeeID: e.ID, SessionKey: e.SessionKey}
		msg := Compose(nc, e, d.BaseURL)

		sendCtx, cancel := context.WithTimeout(ctx, timeout)
		_, res.Err = d.Gateway.SendMessage(sendCtx, e.SessionKey, msg, false)
		cancel()

		if res.Err != nil {
			metrics.NotifySendsTotal.WithLabelValues("error").Inc()
			logger.Error().Err(res.Err).
				Int64("employee_id", e.ID).
				Str("event", string(nc.Event)).
				Msg("notify: send failed")
		} else {
			metrics.NotifySendsTotal.WithLabelValues("ok").Inc()
		}
		results = append(results, res)
	}
	return results
}

// recipients loads employee records and keeps the ones that both have
// notifications enabled and a provisioned gateway session key.
func (d Dispatcher) recipients(ctx context.Context, ids map[int64]struct{}) ([]domain.Employee, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sorted := make([]int64, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	emps, err := d.Directory.Employees(ctx, sorted)
	if err != nil {
		return nil, err
	}
	out := emps[:0]
	for _, e := range emps {
		if e.NotifyEnabled && e.SessionKey != "" {
			out = append(out, e)
		}
	}
	return out, nil
}
