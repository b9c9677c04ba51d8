package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"kilowatt-backend/internal/configurator"
)

// SessionCookie carries the browser session the wizard belongs to.
const SessionCookie = "kw_session"

// pruneEvery bounds how often idle sessions are swept.
const pruneEvery = time.Minute

// WizardFactory builds the wizard of a new session. The returned wizard is
// mounted and loaded by Sessions.
type WizardFactory func(sessionID string) *configurator.Wizard

type session struct {
	wizard   *configurator.Wizard
	init     sync.Once
	lastSeen time.Time
}

// Sessions keeps one wizard per browser session and forgets sessions idle
// for longer than the TTL.
type Sessions struct {
	mu        sync.Mutex
	ttl       time.Duration
	factory   WizardFactory
	entries   map[string]*session
	lastPrune time.Time

	now func() time.Time
}

func NewSessions(ttl time.Duration, factory WizardFactory) *Sessions {
	return &Sessions{
		ttl:     ttl,
		factory: factory,
		entries: make(map[string]*session),
		now:     time.Now,
	}
}

// Wizard returns the wizard of the request's session, creating the session
// and setting its cookie when needed. A new wizard restores the persisted
// selection and loads the catalog before it is returned.
func (s *Sessions) Wizard(w http.ResponseWriter, r *http.Request) *configurator.Wizard {
	id := sessionID(r)
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	now := s.now()
	s.pruneLocked(now)
	sess, ok := s.entries[id]
	if !ok {
		sess = &session{wizard: s.factory(id)}
		s.entries[id] = sess
	}
	sess.lastSeen = now
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sess.init.Do(func() {
		// detached from the request so a cancelled first request does not
		// leave the session with an empty catalog
		ctx := context.WithoutCancel(r.Context())
		sess.wizard.Mount(ctx)
		sess.wizard.Load(ctx)
	})
	return sess.wizard
}

// Len is the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) pruneLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastPrune) < pruneEvery {
		return
	}
	s.lastPrune = now
	for id, sess := range s.entries {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

// sessionID returns the cookie value when it is a well formed UUID. Unknown
// but valid IDs are kept so a restarted server finds the persisted
// selection again.
func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
