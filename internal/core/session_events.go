package core

import (
	"time"

	"github.com/dkeye/Karaoke/internal/domain"
)

type SessionEventKind string

const (
	KindCreated      SessionEventKind = "created"
	KindRebound      SessionEventKind = "rebound"
	KindReset        SessionEventKind = "reset"
	KindRemoteJoined SessionEventKind = "remote_joined"
	KindRemoteLeft   SessionEventKind = "remote_left"
	KindDisplayLost  SessionEventKind = "display_lost"
	KindEvicted      SessionEventKind = "evicted"
)

// SessionEvent describes a lifecycle change for external observers.
type SessionEvent struct {
	Kind     SessionEventKind   `json:"kind"`
	Code     domain.SessionCode `json:"code"`
	Conn     domain.ConnID      `json:"conn,omitempty"`
	PrevCode domain.SessionCode `json:"prev_code,omitempty"`
	At       time.Time          `json:"at"`
}

// EventSink must not block the caller.
type EventSink interface {
	Publish(SessionEvent)
}
