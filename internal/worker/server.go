// internal/worker/server.go
package worker

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boardrelay/internal/config"
	"boardrelay/internal/infra/directory"
	"boardrelay/internal/infra/redisq"
	"boardrelay/internal/metrics"
	"boardrelay/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Config struct {
	MetricsPort int
	// Interval overrides the configured flush interval when non-zero.
	Interval time.Duration
}

// Run registers the flush schedule and drains the delivery queue on it until
// the process is signalled or the registration is superseded.
func Run(cfg Config) error {
	appCfg := config.Load()
	cli := redisq.New(appCfg.Redis)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Connect(ctx); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)
	go serveMetrics(cfg.MetricsPort, reg)

	flusher := usecase.Flusher{
		Q:     redisq.NewDeliveryQueue(cli, appCfg.Webhook.QueueName),
		Store: directory.NewWebhooks(cli),
		HTTP:  &http.Client{Timeout: 30 * time.Second},
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Duration(appCfg.Webhook.IntervalSeconds) * time.Second
	}
	sched := redisq.NewSchedule(cli, appCfg.Webhook.ScheduleID, interval)
	token, err := sched.Register(ctx)
	if err != nil {
		return err
	}

	return sched.Run(ctx, token, func(ctx context.Context) error {
		stats, err := flusher.Flush(ctx)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().
			Int("delivered", stats.Delivered).
			Int("requeued", stats.Requeued).
			Int("dropped", stats.Dropped).
			Msg("flush pass complete")
		return nil
	})
}

func serveMetrics(port int, reg *prometheus.Registry) {
	if port <= 0 {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
