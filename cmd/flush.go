package cmd

import (
	"time"

	"boardrelay/internal/worker"

	"github.com/spf13/cobra"
)

func flushCmd() *cobra.Command {
	var (
		metricsPort int
		interval    time.Duration
	)

	var command = &cobra.Command{
		Use:   "flush",
		Short: "Start the webhook flush worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return worker.Run(worker.Config{
				MetricsPort: metricsPort,
				Interval:    interval,
			})
		},
	}

	command.Flags().IntVar(&metricsPort, "metrics-port", 8093, "Port for the metrics endpoint")
	command.Flags().DurationVar(&interval, "interval", 0, "Flush interval override (0 uses config)")

	return command
}
