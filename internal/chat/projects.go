package chat

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/proposer/internal/actions"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

func (v *View) requireAPI() (API, error) {
	api := v.currentAPI()
	if api == nil {
		return nil, ErrBackendUnavailable
	}
	return api, nil
}

// LoadProject reopens a saved project. The backend issues a fresh session id
// for it and the channel is rebound to that id.
func (v *View) LoadProject(ctx context.Context, id int) (string, error) {
	api, err := v.requireAPI()
	if err != nil {
		return "", err
	}

	saved, err := api.GetChat(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get project %d: %w", id, err)
	}
	turns, err := conversation.DecodeContent(saved.Content)
	if err != nil {
		return "", fmt.Errorf("decode project %d: %w", id, err)
	}
	sid, err := api.ContinueChat(ctx, id)
	if err != nil {
		return "", fmt.Errorf("continue project %d: %w", id, err)
	}

	v.mu.Lock()
	v.modal = nil
	v.projectID = saved.ID
	v.title = saved.Title
	v.mu.Unlock()

	v.load(sid, turns)
	v.connect(ctx, sid)
	v.logger.Info("project loaded", "project_id", saved.ID, "session_id", sid)
	return sid, nil
}

// SaveProject stores the current history. The first save creates the project;
// later saves overwrite it, last write wins.
func (v *View) SaveProject(ctx context.Context, title string) (*backend.SavedChat, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	content, err := conversation.EncodeContent(v.conv.Turns())
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}

	v.mu.Lock()
	id := v.projectID
	if title = strings.TrimSpace(title); title == "" {
		title = v.title
	}
	v.mu.Unlock()
	if title == "" {
		title = "Untitled project"
	}

	var saved *backend.SavedChat
	if id == 0 {
		saved, err = api.CreateChat(ctx, title, content)
	} else {
		saved, err = api.UpdateChat(ctx, id, backend.SavedChatUpdate{Title: &title, Content: &content})
	}
	if err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}

	v.mu.Lock()
	v.projectID = saved.ID
	v.title = saved.Title
	v.mu.Unlock()
	v.logger.Info("project saved", "project_id", saved.ID)
	return saved, nil
}

// RenameProject changes the title of the current project.
func (v *View) RenameProject(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("%w: title is required", backend.ErrValidation)
	}
	api, err := v.requireAPI()
	if err != nil {
		return err
	}

	v.mu.Lock()
	id := v.projectID
	v.mu.Unlock()
	if id == 0 {
		v.mu.Lock()
		v.title = title
		v.mu.Unlock()
		return nil
	}

	saved, err := api.UpdateChat(ctx, id, backend.SavedChatUpdate{Title: &title})
	if err != nil {
		return fmt.Errorf("rename project %d: %w", id, err)
	}
	v.mu.Lock()
	v.title = saved.Title
	v.mu.Unlock()
	return nil
}

// DeleteProject removes a saved project. Deleting the open project detaches
// the view from it; the history stays on screen.
func (v *View) DeleteProject(ctx context.Context, id int) error {
	api, err := v.requireAPI()
	if err != nil {
		return err
	}
	if err := api.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	v.mu.Lock()
	if v.projectID == id {
		v.projectID = 0
		v.title = ""
	}
	v.mu.Unlock()
	return nil
}

func (v *View) ListProjects(ctx context.Context) ([]backend.SavedChat, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	chats, err := api.ListChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return chats, nil
}

// ExportPDF streams the current conversation as a PDF into w.
func (v *View) ExportPDF(ctx context.Context, title string, w io.Writer) (int64, error) {
	api, err := v.requireAPI()
	if err != nil {
		return 0, err
	}
	if title = strings.TrimSpace(title); title == "" {
		v.mu.Lock()
		title = v.title
		v.mu.Unlock()
	}
	if title == "" {
		title = "Proposal"
	}

	turns := v.conv.Turns()
	req := backend.ExportRequest{Title: title, Messages: make([]backend.ExportMessage, 0, len(turns))}
	for _, t := range turns {
		req.Messages = append(req.Messages, backend.ExportMessage{
			Role:    string(t.Role),
			Content: actions.Clean(t.Content),
		})
	}
	n, err := api.ExportChatPDF(ctx, req, w)
	if err != nil {
		return n, fmt.Errorf("export pdf: %w", err)
	}
	return n, nil
}

func (v *View) Recommend(ctx context.Context, query string, topK int) ([]backend.Recommendation, error) {
	api, err := v.requireAPI()
	if err != nil {
		return nil, err
	}
	recs, err := api.Recommend(ctx, backend.RecommendRequest{Query: query, TopK: topK})
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return recs, nil
}
