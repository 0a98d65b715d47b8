package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/proposer/internal/api"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/chat"
	"github.com/MikeSquared-Agency/proposer/internal/hermes"
	"github.com/MikeSquared-Agency/proposer/internal/locator"
	"github.com/MikeSquared-Agency/proposer/internal/slack"
	"github.com/MikeSquared-Agency/proposer/internal/transport"
)

const handshakeTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the conversation view behind the local HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), sessionID)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to mount (generated when empty)")
	return cmd
}

func runServe(parent context.Context, sessionID string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("proposer starting", "port", cfg.Port, "candidates", cfg.BackendCandidates)

	sess, persistent, closeSession, err := openSession(ctx)
	if err != nil {
		slog.Error("failed to open session storage", "error", err)
		return err
	}
	defer closeSession()
	if !persistent {
		slog.Warn("DATABASE_URL not set, login is not remembered")
	}

	// NATS is optional; without it events are not published.
	var events chat.EventSink
	var hermesClient *hermes.Client
	if cfg.NatsURL != "" {
		hermesClient, err = hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Error("failed to connect to NATS", "error", err)
			return err
		}
		events = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)

		if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
			poster := slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, slog.Default())
			if err := hermesClient.Subscribe(hermes.SubjectFinalProposal, hermes.NotifierQueue, poster.HandleFinalProposal); err != nil {
				slog.Error("failed to subscribe to final proposals", "error", err)
				hermesClient.Close()
				return err
			}
			slog.Info("slack poster ready", "channel", cfg.SlackChannel)
		} else {
			slog.Warn("slack not configured, final proposals are not posted")
		}
	} else {
		slog.Warn("NATS_URL not set, conversation events are not published")
	}

	view := chat.New(chat.Options{
		Resolver:    locator.New(cfg.BackendCandidates, cfg.ProbeTimeout, slog.Default()),
		Dialer:      transport.NewWebSocketDialer(handshakeTimeout),
		NewAPI:      func(base string) chat.API { return backend.NewClient(base, sess) },
		Events:      events,
		RosterDelay: cfg.RosterForwardDelay,
		Logger:      slog.Default(),
	})
	defer view.Close()

	sid := view.Mount(ctx, sessionID, nil)
	slog.Info("conversation mounted", "session_id", sid)

	srv := api.NewServer(cfg.Port, cfg.APIToken, view, slog.Default())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if hermesClient != nil {
		g.Go(func() error {
			<-gctx.Done()
			hermesClient.Close()
			return nil
		})
	}

	slog.Info("proposer ready", "port", cfg.Port)
	err = g.Wait()
	slog.Info("proposer stopped")
	if err != nil {
		slog.Error("HTTP server error", "error", err)
		return err
	}
	return nil
}
