package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/MikeSquared-Agency/proposer/internal/actions"
	"github.com/MikeSquared-Agency/proposer/internal/backend"
	"github.com/MikeSquared-Agency/proposer/internal/conversation"
)

var ErrUnknownAction = errors.New("unknown action")

const manualEntryPrompt = "Describe the team, e.g. PM x1, Backend Dev x2, QA x0.5"

// Select performs a suggested action. Methodology and role choices edit the
// latest proposal in place when there is one; the rest become backend
// commands.
func (v *View) Select(ctx context.Context, a actions.Action) error {
	sid := v.conv.SessionID()
	switch a.Kind {
	case actions.KindSelectMethodology:
		if a.Value == "" {
			return fmt.Errorf("%w: methodology is required", ErrUnknownAction)
		}
		if v.rewriteProposal(sid, func(text string) (string, bool) {
			return actions.ReplaceMethodology(text, a.Value)
		}) {
			return nil
		}
		return v.Send(ctx, "Regenerate the proposal using the "+a.Value+" methodology")

	case actions.KindSelectRole:
		if a.Value == "" {
			return fmt.Errorf("%w: role is required", ErrUnknownAction)
		}
		turns := v.conv.Turns()
		target := ""
		if i := actions.LatestRoleSelection(turns); i >= 0 {
			target = actions.RoleTarget(turns[i].Content)
		}
		if v.rewriteProposal(sid, func(text string) (string, bool) {
			return actions.ReplaceRole(text, a.Value, target)
		}) {
			return nil
		}
		return v.Send(ctx, "Regenerate the proposal including the "+a.Value+" role")

	case actions.KindLoadEmployees:
		return v.LoadEmployees(ctx)

	case actions.KindManualEntry:
		v.openModal(ModalManualEntry, manualEntryPrompt)
		return nil
	}

	text, ok := commandText(a)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, a.Kind)
	}
	return v.Send(ctx, text)
}

// rewriteProposal applies edit to the latest full proposal turn of sid. It is
// refused if the conversation moved to another session in between.
func (v *View) rewriteProposal(sid string, edit func(string) (string, bool)) bool {
	if v.conv.SessionID() != sid {
		return false
	}
	turns := v.conv.Turns()
	i := actions.LatestProposal(turns)
	if i < 0 {
		return false
	}
	updated, ok := edit(turns[i].Content)
	if !ok {
		return false
	}
	if !v.conv.Rewrite(sid, i, updated) {
		return false
	}
	v.logger.Info("proposal rewritten in place", "session_id", sid, "turn", i)
	return true
}

// LoadEmployees forwards the saved roster right away and records a short user
// turn for it.
func (v *View) LoadEmployees(ctx context.Context) error {
	sid := v.conv.SessionID()
	if v.currentAPI() == nil {
		v.noticeNoBackend(sid)
		return nil
	}
	if v.conv.Terminated() {
		return ErrConversationEnded
	}

	employees, err := v.fetchRoster(ctx, sid)
	if err != nil {
		v.logger.Warn("roster fetch failed", "session_id", sid, "error", err)
		v.notice(sid, "⚠️ Could not load employees: "+backend.Detail(err))
		return nil
	}
	text := "📋 Loaded " + strconv.Itoa(len(employees)) + " saved employees"
	if v.conv.AppendUser(sid, text) == conversation.Appended {
		v.publishTurn(sid, conversation.RoleUser, text)
	}
	if err := v.sendRoster(ctx, sid, employees); err != nil {
		v.logger.Warn("roster forward failed", "session_id", sid, "error", err)
		v.notice(sid, "⚠️ Error sending message: "+backend.Detail(err))
	}
	return nil
}

func commandText(a actions.Action) (string, bool) {
	switch a.Kind {
	case actions.KindAcceptProposal:
		return "Accept the proposal", true
	case actions.KindRequestChanges:
		return "I want to request changes", true
	case actions.KindChangeMethodology:
		return "Change the methodology", true
	case actions.KindChangeRoles:
		return "Change roles", true
	case actions.KindChangeBudget:
		return "Change the budget", true
	case actions.KindIncreaseContingency:
		return "Increase the contingency", true
	case actions.KindDecreaseContingency:
		return "Decrease the contingency", true
	case actions.KindSetContingency:
		return "Set the contingency to " + strconv.FormatFloat(a.Number, 'f', -1, 64) + "%", true
	case actions.KindSelectDedication:
		return "Set the dedication to x" + strconv.FormatFloat(a.Number, 'f', -1, 64), true
	case actions.KindStartProject:
		return "Start the project", true
	}
	return "", false
}
