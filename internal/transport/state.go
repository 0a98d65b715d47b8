// Package transport carries conversation turns to the backend over a
// WebSocket, falling back to request/response calls when the socket is not
// available.
package transport

import (
	"errors"
	"fmt"
)

type State int

const (
	StateUnresolved State = iota
	StateConnecting
	StateOpen
	StateClosedFallback
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedFallback:
		return "closed-fallback"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Event int

const (
	EventDial Event = iota
	EventHandshakeOK
	EventHandshakeFailed
	EventChannelClosed
	EventSessionChanged
)

func (e Event) String() string {
	switch e {
	case EventDial:
		return "dial"
	case EventHandshakeOK:
		return "handshake-ok"
	case EventHandshakeFailed:
		return "handshake-failed"
	case EventChannelClosed:
		return "channel-closed"
	case EventSessionChanged:
		return "session-changed"
	default:
		return "unknown"
	}
}

var ErrIllegalTransition = errors.New("illegal transport transition")

// Next is the only way the transport state changes. A session change resets
// any state; everything else moves forward only.
func Next(s State, e Event) (State, error) {
	if e == EventSessionChanged {
		return StateUnresolved, nil
	}
	switch {
	case s == StateUnresolved && e == EventDial:
		return StateConnecting, nil
	case s == StateConnecting && e == EventHandshakeOK:
		return StateOpen, nil
	case s == StateConnecting && e == EventHandshakeFailed:
		return StateClosedFallback, nil
	case s == StateOpen && e == EventChannelClosed:
		return StateClosedFallback, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, e, s)
}
