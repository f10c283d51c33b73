package signal

import (
	"encoding/json"

	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleCreate(id domain.ConnID, c *WsSignalConn, data json.RawMessage) {
	supplied := optionalCode(data)
	code, err := ctl.Orch.CreateSession(id, supplied)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("create session failed")
		if msg, ok := wireError(err); ok {
			ctl.sendError(c, msg)
		} else {
			ctl.sendError(c, msgInternal)
		}
		return
	}
	log.Info().Str("module", "signal").Str("conn", string(id)).Str("code", string(code)).Msg("display bound")
}

func (ctl *SignalWSController) handleReset(id domain.ConnID, c *WsSignalConn, data json.RawMessage) {
	var code string
	if !decodePayload(id, core.EventResetSession, data, &code) {
		return
	}
	if _, err := ctl.Orch.ResetSession(id, code); err != nil {
		if msg, ok := wireError(err); ok && msg != msgSessionNotFound {
			ctl.sendError(c, msg)
		}
	}
}

func (ctl *SignalWSController) handleJoin(id domain.ConnID, c *WsSignalConn, data json.RawMessage) {
	if ctl.Limiter != nil && !ctl.Limiter.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("join rate limited")
		ctl.sendError(c, msgTooManyJoins)
		return
	}
	var code string
	if !decodePayload(id, core.EventJoinSession, data, &code) {
		ctl.sendError(c, msgSessionNotFound)
		return
	}
	if err := ctl.Orch.JoinSession(id, code); err != nil {
		if msg, ok := wireError(err); ok {
			ctl.sendError(c, msg)
		}
	}
}
