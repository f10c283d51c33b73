package app

import (
	"sync"

	"github.com/dkeye/Karaoke/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const DefaultMaxCodeAttempts = 64

type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
	gone    bool
}

// Store is the only owner of session state. Callers never see the map;
// they get copies, or run a closure while the session is locked.
//
// Lock order is store then session. Closures passed to Update, Range,
// DeleteIf and Replace must not call back into the Store.
type Store struct {
	mu          sync.RWMutex
	sessions    map[domain.SessionCode]*sessionEntry
	codes       CodeGenerator
	clock       clockwork.Clock
	maxAttempts int
}

func NewStore(codes CodeGenerator, clock clockwork.Clock, maxAttempts int) *Store {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxCodeAttempts
	}
	return &Store{
		sessions:    make(map[domain.SessionCode]*sessionEntry),
		codes:       codes,
		clock:       clock,
		maxAttempts: maxAttempts,
	}
}

// Create stores a fresh session bound to display under an unused code.
func (st *Store) Create(display domain.ConnID) (domain.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, err := st.createLocked(display)
	if err != nil {
		return domain.Session{}, err
	}
	return e.session.Clone(), nil
}

func (st *Store) createLocked(display domain.ConnID) (*sessionEntry, error) {
	for i := 0; i < st.maxAttempts; i++ {
		code := st.codes.Generate()
		if _, taken := st.sessions[code]; taken {
			continue
		}
		e := &sessionEntry{session: domain.NewSession(code, display, st.clock.Now())}
		st.sessions[code] = e
		log.Info().Str("module", "app.store").Str("code", string(code)).Str("display", string(display)).Msg("session created")
		return e, nil
	}
	log.Error().Str("module", "app.store").Int("attempts", st.maxAttempts).Int("sessions", len(st.sessions)).Msg("code space exhausted")
	return nil, ErrCodeSpaceExhausted
}

func (st *Store) Get(code domain.SessionCode) (domain.Session, bool) {
	e, ok := st.entry(code)
	if !ok {
		return domain.Session{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return domain.Session{}, false
	}
	return e.session.Clone(), true
}

// Update runs fn with the session locked. fn's error is returned as is.
func (st *Store) Update(code domain.SessionCode, fn func(s *domain.Session) error) error {
	e, ok := st.entry(code)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return ErrSessionNotFound
	}
	return fn(e.session)
}

func (st *Store) Delete(code domain.SessionCode) bool {
	return st.DeleteIf(code, func(*domain.Session) bool { return true })
}

// DeleteIf removes the session only when pred holds, checked under lock.
func (st *Store) DeleteIf(code domain.SessionCode, pred func(s *domain.Session) bool) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[code]
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !pred(e.session) {
		return false
	}
	e.gone = true
	delete(st.sessions, code)
	log.Info().Str("module", "app.store").Str("code", string(code)).Msg("session deleted")
	return true
}

// Replace swaps the session under code for a fresh one bound to the same
// display under a new code. fn sees the old session before it goes away
// and can veto the swap by returning an error.
func (st *Store) Replace(code domain.SessionCode, fn func(old *domain.Session) error) (domain.Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	old, ok := st.sessions[code]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	old.mu.Lock()
	defer old.mu.Unlock()

	e, err := st.createLocked(old.session.DisplayConn)
	if err != nil {
		return domain.Session{}, err
	}
	if err := fn(old.session); err != nil {
		delete(st.sessions, e.session.Code)
		return domain.Session{}, err
	}
	old.gone = true
	delete(st.sessions, code)

	log.Info().Str("module", "app.store").Str("old_code", string(code)).Str("code", string(e.session.Code)).Msg("session replaced")
	return e.session.Clone(), nil
}

// Range visits every stored session, each under its own lock.
func (st *Store) Range(fn func(s *domain.Session)) {
	st.mu.RLock()
	entries := make([]*sessionEntry, 0, len(st.sessions))
	for _, e := range st.sessions {
		entries = append(entries, e)
	}
	st.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
		if !e.gone {
			fn(e.session)
		}
		e.mu.Unlock()
	}
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *Store) entry(code domain.SessionCode) (*sessionEntry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	e, ok := st.sessions[code]
	return e, ok
}
