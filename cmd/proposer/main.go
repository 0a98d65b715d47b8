package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/proposer/internal/config"
	"github.com/MikeSquared-Agency/proposer/internal/session"
	"github.com/MikeSquared-Agency/proposer/internal/store"
)

var (
	configPath string
	cfg        config.Config
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "proposer",
		Short:         "Conversation client for the project proposal assistant",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			setupLogging(cfg.LogLevel)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("PROPOSER_CONFIG"), "YAML config file")

	root.AddCommand(newServeCmd(), newProbeCmd(), newExportCmd(), newLoginCmd(), newRegisterCmd(), newLogoutCmd())
	return root
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// openSession returns the session context backed by Postgres when
// DATABASE_URL is set, in memory otherwise. The returned func releases it.
func openSession(ctx context.Context) (*session.Context, bool, func(), error) {
	if cfg.DatabaseURL == "" {
		return session.New(session.NewMemoryStorage()), false, func() {}, nil
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, false, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, false, nil, err
	}
	slog.Info("database connected")
	return session.New(db), true, db.Close, nil
}
