// ============================================================================
// backend/internal/gateway/session/session.go
// Per-browser state: admin controllers and a timetable viewer
// ============================================================================

package session

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/timetable"
)

// CookieName carries the session id.
const CookieName = "schedule_session"

// Factory builds the state owned by a new session.
type Factory struct {
	Pages  func() map[string]entity.Page
	Viewer func() *timetable.Viewer
}

// Session is one browser's admin pages and timetable viewer. Every action on
// a session runs under its lock.
type Session struct {
	ID string

	mu       sync.Mutex
	Pages    map[string]entity.Page
	Viewer   *timetable.Viewer
	lastSeen time.Time
	flash    *entity.Notice

	newViewer func() *timetable.Viewer
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Flash stores a one-shot message for the next rendered page.
func (s *Session) Flash(level, message string) {
	s.flash = &entity.Notice{Level: level, Message: message}
}

// TakeFlash returns and clears the pending message.
func (s *Session) TakeFlash() *entity.Notice {
	n := s.flash
	s.flash = nil
	return n
}

// ResetViewer discards the viewer so the next open refetches the schedule.
// Caller holds the lock.
func (s *Session) ResetViewer() {
	s.Viewer = s.newViewer()
}

// Store keeps sessions in memory and evicts those idle longer than ttl.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	factory  Factory
	secure   bool
	now      func() time.Time
}

// NewStore creates an empty store. secure marks the cookie Secure.
func NewStore(factory Factory, ttl time.Duration, secure bool) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		factory:  factory,
		secure:   secure,
		now:      time.Now,
	}
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Collector exposes the live session count as a gauge.
func (s *Store) Collector() prometheus.Collector {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "schedule_web_sessions",
		Help: "Browser sessions currently held in memory.",
	}, func() float64 { return float64(s.Len()) })
}

// get returns the session for id, creating one when id is unknown.
func (s *Store) get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if sess, ok := s.sessions[id]; ok && id != "" {
		sess.lastSeen = now
		return sess, false
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Pages:     s.factory.Pages(),
		Viewer:    s.factory.Viewer(),
		lastSeen:  now,
		newViewer: s.factory.Viewer,
	}
	s.sessions[sess.ID] = sess
	return sess, true
}

// Sweep evicts sessions idle since before now-ttl and returns how many went.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Run sweeps on every tick until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("INFO: session sweeper stopped")
			return
		case t := <-ticker.C:
			if n := s.Sweep(t); n > 0 {
				log.Printf("INFO: evicted %d idle sessions", n)
			}
		}
	}
}

type ctxKey struct{}

// Middleware attaches the caller's session to the request context, issuing
// a cookie for new sessions.
func (s *Store) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(CookieName); err == nil {
			id = c.Value
		}

		sess, created := s.get(id)
		if created {
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

// FromContext returns the session set by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok
}
