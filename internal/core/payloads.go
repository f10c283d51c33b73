package core

import (
	"encoding/json"

	"github.com/dkeye/Karaoke/internal/domain"
)

// SessionCreated is sent to a display on create, rebind and reset.
type SessionCreated struct {
	Code          domain.SessionCode   `json:"code"`
	Queue         []domain.QueueItem   `json:"queue"`
	PlaybackState domain.PlaybackState `json:"playbackState"`
}

// JoinedSuccess is sent to a remote that took the controller slot.
type JoinedSuccess struct {
	Queue         []domain.QueueItem   `json:"queue"`
	PlaybackState domain.PlaybackState `json:"playbackState"`
}

// PlayerCommand is relayed verbatim; data stays opaque to the server.
type PlayerCommand struct {
	Command string          `json:"command"`
	Data    json.RawMessage `json:"data,omitempty"`
}
