package chat

import (
	"context"
	"errors"
	"strings"
)

type ModalKind string

const (
	ModalManualEntry ModalKind = "manual-entry"
	ModalRename      ModalKind = "rename"
)

var ErrNoModal = errors.New("no modal open")

// Modal is a pending free-text prompt. At most one is open at a time.
type Modal struct {
	Kind   ModalKind `json:"kind"`
	Prompt string    `json:"prompt"`
}

func (v *View) openModal(kind ModalKind, prompt string) {
	v.mu.Lock()
	v.modal = &Modal{Kind: kind, Prompt: prompt}
	v.mu.Unlock()
}

// OpenRename asks for a new title for the current project.
func (v *View) OpenRename() {
	v.openModal(ModalRename, "New project title")
}

// CancelModal closes the modal without side effects.
func (v *View) CancelModal() {
	v.mu.Lock()
	v.modal = nil
	v.mu.Unlock()
}

// ResolveModal submits input to the open modal and closes it. Blank input
// closes the modal without doing anything.
func (v *View) ResolveModal(ctx context.Context, input string) error {
	v.mu.Lock()
	m := v.modal
	v.modal = nil
	v.mu.Unlock()

	if m == nil {
		return ErrNoModal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	switch m.Kind {
	case ModalRename:
		return v.RenameProject(ctx, input)
	default:
		return v.Send(ctx, "Team: "+input)
	}
}
