package orch

import (
	"errors"
	"slices"

	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) AddToQueue(conn domain.ConnID, raw string, item domain.QueueItem) error {
	return o.mutate(core.EventAddToQueue, conn, raw, func(s *domain.Session) error {
		s.Queue = append(s.Queue, item)
		o.broadcast(s, "", core.EventQueueUpdated, domain.CloneQueue(s.Queue))
		return nil
	})
}

// RemoveFromQueue drops the item at index. An index outside the queue
// changes nothing, but the queue is still re-broadcast.
func (o *Orchestrator) RemoveFromQueue(conn domain.ConnID, raw string, index int) error {
	return o.mutate(core.EventRemoveFromQueue, conn, raw, func(s *domain.Session) error {
		if index >= 0 && index < len(s.Queue) {
			s.Queue = slices.Delete(s.Queue, index, index+1)
		} else {
			log.Debug().Str("module", "orch").Str("code", raw).Int("index", index).Int("len", len(s.Queue)).Msg("remove index out of range")
		}
		o.broadcast(s, "", core.EventQueueUpdated, domain.CloneQueue(s.Queue))
		return nil
	})
}

// ReorderQueue replaces the queue with the caller's list. The list is
// trusted unless StrictReorder is set.
func (o *Orchestrator) ReorderQueue(conn domain.ConnID, raw string, next []domain.QueueItem) error {
	return o.mutate(core.EventReorderQueue, conn, raw, func(s *domain.Session) error {
		if o.StrictReorder && !domain.IsPermutation(s.Queue, next) {
			return app.ErrNotPermutation
		}
		s.Queue = domain.CloneQueue(next)
		o.broadcast(s, "", core.EventQueueUpdated, domain.CloneQueue(s.Queue))
		return nil
	})
}

// mutate resolves the session and runs fn under its lock. Events for an
// unknown session are dropped; the caller gets ErrSessionNotFound but
// nothing is sent on the wire.
func (o *Orchestrator) mutate(ev core.EventType, conn domain.ConnID, raw string, fn func(s *domain.Session) error) error {
	err := o.Sessions.Update(domain.SessionCode(raw), fn)
	if errors.Is(err, app.ErrSessionNotFound) {
		log.Warn().Str("module", "orch").Str("event", string(ev)).Str("code", raw).Str("conn", string(conn)).Msg("event for unknown session dropped")
	}
	return err
}
