package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/locator"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Find a reachable backend and print its health",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveBackend(cmd.Context())
			if err != nil {
				return err
			}
			client := backend.NewClient(base, nil)
			health, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", client.BaseURL(), health.Status, health.App)
			return nil
		},
	}
}

func resolveBackend(ctx context.Context) (string, error) {
	base, ok := locator.New(cfg.BackendCandidates, cfg.ProbeTimeout, slog.Default()).Resolve(ctx)
	if !ok {
		return "", fmt.Errorf("backend not detected (tried %v)", cfg.BackendCandidates)
	}
	return base, nil
}
