package signal

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

// Wire texts of the error event.
const (
	msgSessionNotFound = "session does not exist"
	msgControllerBound = "session already has a controller"
	msgCodeSpace       = "no free session codes, try again later"
	msgNotPermutation  = "reordered queue must contain the same songs"
	msgTooManyJoins    = "too many join attempts"
	msgInternal        = "internal error"
)

func (ctl *SignalWSController) handleSignal(id domain.ConnID, c *WsSignalConn, data []byte) {
	var env core.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad json")
		return
	}

	switch env.Type {
	case core.EventCreateSession:
		ctl.handleCreate(id, c, env.Data)
	case core.EventResetSession:
		ctl.handleReset(id, c, env.Data)
	case core.EventJoinSession:
		ctl.handleJoin(id, c, env.Data)
	case core.EventAddToQueue:
		ctl.handleAddToQueue(id, env.Data)
	case core.EventRemoveFromQueue:
		ctl.handleRemoveFromQueue(id, env.Data)
	case core.EventReorderQueue:
		ctl.handleReorderQueue(id, c, env.Data)
	case core.EventUpdatePlayback:
		ctl.handleUpdatePlayback(id, env.Data)
	case core.EventPlayerCommand:
		ctl.handlePlayerCommand(id, env.Data)
	case core.EventPing:
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("conn", string(id)).Str("type", string(env.Type)).Msg("unknown signal")
	}
}

// decodePayload unmarshals data into v, logging and reporting failure.
func decodePayload(id domain.ConnID, t core.EventType, data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Str("type", string(t)).Msg("bad payload")
		return false
	}
	return true
}

// optionalCode reads a code that may be absent, null or of the wrong
// type. All of those mean "no code".
func optionalCode(data json.RawMessage) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

// wireError maps an orchestrator error to the text sent back, if any.
// Errors without a mapping are not reported on the wire.
func wireError(err error) (string, bool) {
	switch {
	case errors.Is(err, app.ErrSessionNotFound):
		return msgSessionNotFound, true
	case errors.Is(err, app.ErrControllerBound):
		return msgControllerBound, true
	case errors.Is(err, app.ErrCodeSpaceExhausted):
		return msgCodeSpace, true
	case errors.Is(err, app.ErrNotPermutation):
		return msgNotPermutation, true
	}
	return "", false
}
