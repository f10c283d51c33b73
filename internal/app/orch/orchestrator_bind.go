package orch

import (
	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

// CreateSession binds conn as a display. A supplied code that names a
// stored session rebinds it and keeps its queue and playback; anything
// else gets a brand new session under a generated code.
func (o *Orchestrator) CreateSession(conn domain.ConnID, supplied string) (domain.SessionCode, error) {
	if code, err := domain.ParseCode(supplied); err == nil {
		var prev domain.ConnID
		err := o.Sessions.Update(code, func(s *domain.Session) error {
			prev = s.DisplayConn
			s.DisplayConn = conn
			o.send(conn, core.EventSessionCreated, snapshot(s))
			return nil
		})
		if err == nil {
			o.cancelEviction(code)
			log.Info().Str("module", "orch").Str("code", string(code)).Str("conn", string(conn)).Str("prev", string(prev)).Msg("session rebound")
			o.publish(core.SessionEvent{Kind: core.KindRebound, Code: code, Conn: conn})
			return code, nil
		}
	} else if supplied != "" {
		log.Debug().Str("module", "orch").Str("conn", string(conn)).Str("supplied", supplied).Msg("ignoring malformed session code")
	}

	s, err := o.Sessions.Create(conn)
	if err != nil {
		return "", err
	}
	o.send(conn, core.EventSessionCreated, core.SessionCreated{
		Code:          s.Code,
		Queue:         s.Queue,
		PlaybackState: s.Playback,
	})
	o.publish(core.SessionEvent{Kind: core.KindCreated, Code: s.Code, Conn: conn})
	return s.Code, nil
}

// JoinSession takes the single controller slot of a session.
func (o *Orchestrator) JoinSession(conn domain.ConnID, raw string) error {
	code := domain.SessionCode(raw)
	err := o.Sessions.Update(code, func(s *domain.Session) error {
		if s.HasRemote() {
			return app.ErrControllerBound
		}
		s.RemoteConn = conn
		o.send(conn, core.EventJoinedSuccess, core.JoinedSuccess{
			Queue:         domain.CloneQueue(s.Queue),
			PlaybackState: s.Playback.Clone(),
		})
		o.send(s.DisplayConn, core.EventRemoteConnected, nil)
		return nil
	})
	if err != nil {
		log.Info().Err(err).Str("module", "orch").Str("code", raw).Str("conn", string(conn)).Msg("join rejected")
		return err
	}
	log.Info().Str("module", "orch").Str("code", raw).Str("conn", string(conn)).Msg("remote joined")
	o.publish(core.SessionEvent{Kind: core.KindRemoteJoined, Code: code, Conn: conn})
	return nil
}

// ResetSession retires the display's current code and hands it a new,
// empty session. Everyone in the old session is told the display left.
func (o *Orchestrator) ResetSession(conn domain.ConnID, raw string) (domain.SessionCode, error) {
	code := domain.SessionCode(raw)
	fresh, err := o.Sessions.Replace(code, func(old *domain.Session) error {
		if old.DisplayConn != conn {
			return app.ErrNotDisplay
		}
		o.broadcast(old, "", core.EventDisplayDisconnected, nil)
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("code", raw).Str("conn", string(conn)).Msg("reset rejected")
		return "", err
	}
	o.send(conn, core.EventSessionCreated, core.SessionCreated{
		Code:          fresh.Code,
		Queue:         fresh.Queue,
		PlaybackState: fresh.Playback,
	})
	log.Info().Str("module", "orch").Str("old_code", raw).Str("code", string(fresh.Code)).Msg("session reset")
	o.publish(core.SessionEvent{Kind: core.KindReset, Code: fresh.Code, Conn: conn, PrevCode: code})
	return fresh.Code, nil
}
