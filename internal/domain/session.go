// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"
)

const CodeLen = 6

var ErrCodeMalformed = errors.New("session code must be 6 digits")

type (
	SessionCode string
	ConnID      string
)

// Session pairs one display with at most one remote.
// The zero ConnID means the role is unbound.
type Session struct {
	Code        SessionCode
	DisplayConn ConnID
	RemoteConn  ConnID
	Queue       []QueueItem
	Playback    PlaybackState
	CreatedAt   time.Time
}

// NewSession builds a fresh session bound to display with an empty queue.
func NewSession(code SessionCode, display ConnID, now time.Time) *Session {
	return &Session{
		Code:        code,
		DisplayConn: display,
		Queue:       []QueueItem{},
		Playback:    DefaultPlayback(),
		CreatedAt:   now,
	}
}

func (s *Session) HasRemote() bool { return s.RemoteConn != "" }

// Members lists the connections currently bound to the session.
func (s *Session) Members() []ConnID {
	out := make([]ConnID, 0, 2)
	if s.DisplayConn != "" {
		out = append(out, s.DisplayConn)
	}
	if s.RemoteConn != "" && s.RemoteConn != s.DisplayConn {
		out = append(out, s.RemoteConn)
	}
	return out
}

// Clone returns a deep copy safe to hand out of the store.
func (s *Session) Clone() Session {
	c := *s
	c.Queue = CloneQueue(s.Queue)
	c.Playback = s.Playback.Clone()
	return c
}

// ParseCode accepts exactly six ASCII digits.
func ParseCode(raw string) (SessionCode, error) {
	if len(raw) != CodeLen {
		return "", ErrCodeMalformed
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return "", ErrCodeMalformed
		}
	}
	return SessionCode(raw), nil
}
