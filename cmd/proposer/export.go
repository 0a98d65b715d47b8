package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/proposer/internal/actions"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

func newExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <project-id>",
		Short: "Download a saved project as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			if output == "" {
				output = fmt.Sprintf("project-%d.pdf", id)
			}
			return runExport(cmd.Context(), id, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default project-<id>.pdf)")
	return cmd
}

func runExport(ctx context.Context, id int, output string) error {
	base, err := resolveBackend(ctx)
	if err != nil {
		return err
	}
	sess, _, closeSession, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer closeSession()
	client := backend.NewClient(base, sess)

	saved, err := client.GetChat(ctx, id)
	if err != nil {
		return fmt.Errorf("get project %d: %s", id, backend.Detail(err))
	}
	turns, err := conversation.DecodeContent(saved.Content)
	if err != nil {
		return err
	}

	req := backend.ExportRequest{Title: saved.Title, Messages: make([]backend.ExportMessage, 0, len(turns))}
	for _, t := range conversation.TruncateAtTerminal(turns) {
		req.Messages = append(req.Messages, backend.ExportMessage{Role: string(t.Role), Content: actions.Clean(t.Content)})
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	n, err := client.ExportChatPDF(ctx, req, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(output)
		return fmt.Errorf("export pdf: %s", backend.Detail(err))
	}
	slog.Info("project exported", "project_id", id, "file", output, "bytes", n)
	return nil
}
