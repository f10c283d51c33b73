package app

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/rs/zerolog/log"
)

type connEntry struct {
	Signal      core.SignalConnection
	Client      string
	Cancel      context.CancelFunc
	ConnectedAt time.Time
}

// Registry maps live connection ids to their transport endpoints.
// Broadcast groups are resolved through it from a session's role fields.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []domain.ConnID
}

func (r *Registry) BindSignal(id domain.ConnID, client string, sig core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{
		Signal:      sig,
		Client:      client,
		Cancel:      cancel,
		ConnectedAt: time.Now(),
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("client", client).Msg("bound signal")
}

func (r *Registry) GetSignal(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.conns[id]; ok {
		return e.Signal, true
	}
	return nil, false
}

func (r *Registry) Unbind(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbind signal")
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Deliver sends f to every listed connection that is still registered.
// Unknown ids are skipped silently; full buffers are reported as dropped.
func (r *Registry) Deliver(ids []domain.ConnID, f core.Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, id := range ids {
		e, ok := r.conns[id]
		if !ok {
			continue
		}
		if err := e.Signal.TrySend(f); err != nil {
			res.Dropped = append(res.Dropped, id)
			continue
		}
		res.SendTo++
	}
	return res
}

// Kick closes the transport; the read loop then reports the disconnect.
func (r *Registry) Kick(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	e.Signal.Close()
	log.Warn().Str("module", "app.registry").Str("conn", string(id)).Msg("kicked connection")
	return true
}
