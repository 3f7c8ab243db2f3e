package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/TwinScore/internal/config"
	"github.com/MikeSquared-Agency/TwinScore/internal/hermes"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow evaluation events",
	Long: `Watch subscribes to the service's evaluation subjects and prints each
completed or rejected evaluation as one JSON line until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("nats")
		if url == "" {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			url = cfg.Hermes.URL
		}
		if url == "" {
			return fmt.Errorf("no NATS URL: pass --nats or set hermes.url")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client, err := hermes.NewNATSClient(ctx, url, "twinctl-watch", newCLILogger(cmd))
		if err != nil {
			return err
		}
		defer client.Close()

		out := cmd.OutOrStdout()
		if err := client.Subscribe(hermes.SubjectAll, func(subject string, data []byte) {
			fmt.Fprintf(out, "%s %s\n", subject, data)
		}); err != nil {
			return err
		}

		<-ctx.Done()
		return nil
	},
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS URL (default: hermes.url from config)")

	rootCmd.AddCommand(watchCmd)
}
