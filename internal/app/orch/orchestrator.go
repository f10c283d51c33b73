package orch

import (
	"sync"
	"time"

	"github.com/dkeye/Karaoke/internal/app"
	"github.com/dkeye/Karaoke/internal/core"
	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const DefaultGracePeriod = 30 * time.Second

type Orchestrator struct {
	Registry *app.Registry
	Sessions *app.Store
	Policy   app.Policy
	Events   core.EventSink
	Clock    clockwork.Clock

	// Grace is how long a session outlives its display connection.
	Grace time.Duration
	// StrictReorder rejects reorder-queue payloads that are not a
	// permutation of the current queue.
	StrictReorder bool

	timersMu sync.Mutex
	timers   map[domain.SessionCode]graceTimer
	pending  sync.WaitGroup
}

func (o *Orchestrator) send(to domain.ConnID, t core.EventType, data any) {
	if to == "" {
		return
	}
	o.deliver([]domain.ConnID{to}, t, data)
}

// broadcast reaches every member of s except the given connection.
func (o *Orchestrator) broadcast(s *domain.Session, except domain.ConnID, t core.EventType, data any) {
	members := s.Members()
	to := members[:0]
	for _, id := range members {
		if id != except {
			to = append(to, id)
		}
	}
	o.deliver(to, t, data)
}

func (o *Orchestrator) deliver(to []domain.ConnID, t core.EventType, data any) {
	if len(to) == 0 {
		return
	}
	frame, err := core.Encode(t, data)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", string(t)).Msg("encode failed")
		return
	}
	res := o.Registry.Deliver(to, frame)
	log.Debug().Str("module", "orch").Str("event", string(t)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("deliver result")
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			o.Registry.Kick(slow)
		case app.NoAction:
		}
	}
}

func (o *Orchestrator) publish(ev core.SessionEvent) {
	if o.Events == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = o.clock().Now()
	}
	o.Events.Publish(ev)
}

func (o *Orchestrator) clock() clockwork.Clock {
	if o.Clock == nil {
		return clockwork.NewRealClock()
	}
	return o.Clock
}

func (o *Orchestrator) grace() time.Duration {
	if o.Grace <= 0 {
		return DefaultGracePeriod
	}
	return o.Grace
}

func snapshot(s *domain.Session) core.SessionCreated {
	return core.SessionCreated{
		Code:          s.Code,
		Queue:         domain.CloneQueue(s.Queue),
		PlaybackState: s.Playback.Clone(),
	}
}
