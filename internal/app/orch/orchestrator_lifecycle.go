package orch

import (
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type graceTimer struct {
	conn  domain.ConnID
	timer clockwork.Timer
}

// OnDisconnect applies the role policy for a closed connection: a lost
// display starts the grace period, a lost remote frees the controller
// slot at once.
func (o *Orchestrator) OnDisconnect(conn domain.ConnID) {
	o.Registry.Unbind(conn)

	var lost, left []domain.SessionCode
	o.Sessions.Range(func(s *domain.Session) {
		if s.RemoteConn == conn {
			s.RemoteConn = ""
			if s.DisplayConn != conn {
				o.send(s.DisplayConn, core.EventRemoteDisconnected, nil)
			}
			left = append(left, s.Code)
		}
		if s.DisplayConn == conn {
			o.broadcast(s, conn, core.EventDisplayDisconnected, nil)
			o.scheduleEviction(s.Code, conn)
			lost = append(lost, s.Code)
		}
	})

	for _, code := range left {
		log.Info().Str("module", "orch").Str("code", string(code)).Str("conn", string(conn)).Msg("remote disconnected")
		o.publish(core.SessionEvent{Kind: core.KindRemoteLeft, Code: code, Conn: conn})
	}
	for _, code := range lost {
		log.Info().Str("module", "orch").Str("code", string(code)).Str("conn", string(conn)).Dur("grace", o.grace()).Msg("display disconnected, waiting for rebind")
		o.publish(core.SessionEvent{Kind: core.KindDisplayLost, Code: code, Conn: conn})
	}
}

// scheduleEviction deletes the session after the grace period unless a
// rebind moved the display to another connection in the meantime.
func (o *Orchestrator) scheduleEviction(code domain.SessionCode, conn domain.ConnID) {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()

	o.pending.Add(1)
	t := o.clock().AfterFunc(o.grace(), func() {
		defer o.pending.Done()
		o.removeTimer(code, conn)
		o.evict(code, conn)
	})
	o.replaceTimerLocked(code, graceTimer{conn: conn, timer: t})
}

func (o *Orchestrator) evict(code domain.SessionCode, conn domain.ConnID) {
	evicted := o.Sessions.DeleteIf(code, func(s *domain.Session) bool {
		return s.DisplayConn == conn
	})
	if !evicted {
		log.Debug().Str("module", "orch").Str("code", string(code)).Msg("grace timer fired after rebind, keeping session")
		return
	}
	log.Info().Str("module", "orch").Str("code", string(code)).Str("conn", string(conn)).Msg("session cleaned up after grace period")
	o.publish(core.SessionEvent{Kind: core.KindEvicted, Code: code, Conn: conn})
}

// replaceTimerLocked installs t for code, stopping any older timer.
func (o *Orchestrator) replaceTimerLocked(code domain.SessionCode, t graceTimer) {
	if o.timers == nil {
		o.timers = make(map[domain.SessionCode]graceTimer)
	}
	if existing, ok := o.timers[code]; ok {
		if existing.timer.Stop() {
			o.pending.Done()
		}
		log.Debug().Str("module", "orch").Str("code", string(code)).Msg("replaced grace timer")
	}
	o.timers[code] = t
}

// removeTimer forgets the timer for code if it still belongs to conn.
func (o *Orchestrator) removeTimer(code domain.SessionCode, conn domain.ConnID) {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()
	if t, ok := o.timers[code]; ok && t.conn == conn {
		delete(o.timers, code)
	}
}

// cancelEviction stops the grace timer of code, if any. A timer that
// already fired is harmless: eviction re-checks the display at fire time.
func (o *Orchestrator) cancelEviction(code domain.SessionCode) {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()
	t, ok := o.timers[code]
	if !ok {
		return
	}
	if t.timer.Stop() {
		o.pending.Done()
	}
	delete(o.timers, code)
}

// waitTimers blocks until every fired or stopped grace timer is settled.
func (o *Orchestrator) waitTimers() {
	o.pending.Wait()
}

// PendingEvictions reports how many grace timers are armed.
func (o *Orchestrator) PendingEvictions() int {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()
	return len(o.timers)
}

// Shutdown stops every pending grace timer. Sessions are left in place.
func (o *Orchestrator) Shutdown() {
	o.timersMu.Lock()
	defer o.timersMu.Unlock()
	for code, t := range o.timers {
		if t.timer.Stop() {
			o.pending.Done()
		}
		log.Debug().Str("module", "orch").Str("code", string(code)).Msg("cancelled grace timer on shutdown")
	}
	o.timers = make(map[domain.SessionCode]graceTimer)
}
