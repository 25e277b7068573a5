package cmd

import (
	"net/http"
	"time"

	"boardrelay/internal/api"
	"boardrelay/internal/config"
	"boardrelay/internal/gateway"
	"boardrelay/internal/infra/directory"
	"boardrelay/internal/infra/redisq"
	"boardrelay/internal/metrics"
	"boardrelay/internal/notify"
	"boardrelay/internal/usecase"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func apiCmd() *cobra.Command {
	var port int
	var command = &cobra.Command{
		Use:   "api",
		Short: "Start the relay API server",
		Run: func(cmd *cobra.Command, args []string) {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
			cfg := config.Load()
			cli := redisq.New(cfg.Redis)

			reg := prometheus.NewRegistry()
			metrics.MustRegister(reg)

			dir := directory.New(cli)
			queue := redisq.NewDeliveryQueue(cli, cfg.Webhook.QueueName)

			server := api.NewServer(api.Deps{
				Dispatcher: notify.Dispatcher{
					Gateway:   gateway.New(gateway.Config{URL: cfg.Gateway.URL, Token: cfg.Gateway.Token}),
					Directory: dir,
					BaseURL:   cfg.Gateway.BaseURL,
				},
				Enqueuer: usecase.Enqueuer{Q: queue},
				Flusher: usecase.Flusher{
					Q:     queue,
					Store: directory.NewWebhooks(cli),
					HTTP:  &http.Client{Timeout: 30 * time.Second},
				},
				Registry: reg,
			})
			server.Run(port)
		},
	}

	command.Flags().IntVarP(&port, "port", "p", 8090, "Port to run the server on")
	return command
}
