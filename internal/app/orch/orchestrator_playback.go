package orch

import (
	"encoding/json"

	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
)

// UpdatePlayback merges patch into the session's playback and echoes the
// result to everyone but the sender.
func (o *Orchestrator) UpdatePlayback(conn domain.ConnID, raw string, patch domain.PlaybackPatch) error {
	return o.mutate(core.EventUpdatePlayback, conn, raw, func(s *domain.Session) error {
		s.Playback = s.Playback.Merge(patch)
		o.broadcast(s, conn, core.EventPlaybackUpdated, s.Playback.Clone())
		return nil
	})
}

// PlayerCommand relays command and data to the whole session, sender
// included. The display's player decides what the command means.
func (o *Orchestrator) PlayerCommand(conn domain.ConnID, raw string, command string, data json.RawMessage) error {
	return o.mutate(core.EventPlayerCommand, conn, raw, func(s *domain.Session) error {
		o.broadcast(s, "", core.EventPlayerCommand, core.PlayerCommand{Command: command, Data: data})
		return nil
	})
}
