package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/proposer/internal/backend"
)

const rosterTimeout = 30 * time.Second

type rosterPayload struct {
	Employees []backend.Employee `json:"employees"`
}

// scheduleRosterForward queues one delayed roster upload for sid. A forward
// already pending for the session absorbs further requests.
func (v *View) scheduleRosterForward(sid string) {
	v.mu.Lock()
	if v.rosterPending[sid] {
		v.mu.Unlock()
		v.logger.Debug("roster forward already pending", "session_id", sid)
		return
	}
	v.rosterPending[sid] = true
	v.mu.Unlock()

	v.logger.Info("roster requested, forwarding", "session_id", sid, "delay", v.rosterDelay)
	time.AfterFunc(v.rosterDelay, func() {
		defer func() {
			v.mu.Lock()
			delete(v.rosterPending, sid)
			v.mu.Unlock()
		}()
		ctx, cancel := context.WithTimeout(context.Background(), rosterTimeout)
		defer cancel()
		if err := v.forwardRoster(ctx, sid); err != nil {
			v.logger.Warn("roster forward failed", "session_id", sid, "error", err)
		}
	})
}

// forwardRoster fetches the saved employees and sends them to the backend as
// a JSON message on sid.
func (v *View) forwardRoster(ctx context.Context, sid string) error {
	employees, err := v.fetchRoster(ctx, sid)
	if err != nil {
		return err
	}
	return v.sendRoster(ctx, sid, employees)
}

func (v *View) fetchRoster(ctx context.Context, sid string) ([]backend.Employee, error) {
	if v.conv.SessionID() != sid {
		return nil, fmt.Errorf("session %s no longer active", sid)
	}
	api := v.currentAPI()
	if api == nil {
		return nil, ErrBackendUnavailable
	}
	employees, err := api.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	if employees == nil {
		employees = []backend.Employee{}
	}
	return employees, nil
}

func (v *View) sendRoster(ctx context.Context, sid string, employees []backend.Employee) error {
	body, err := json.Marshal(rosterPayload{Employees: employees})
	if err != nil {
		return fmt.Errorf("marshal roster: %w", err)
	}
	reply, async, err := v.transport.Send(ctx, backend.ChatRequest{SessionID: sid, Message: string(body)})
	if err != nil {
		return err
	}
	if !async {
		v.handleInbound(sid, reply)
	}
	return nil
}
