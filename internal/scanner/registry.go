package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"eventsphere/internal/apperr"
)

const DefaultSessionTTL = 30 * time.Minute

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl      time.Duration
	cooldown time.Duration
	now      func() time.Time
	log      *zerolog.Logger
}

func NewRegistry(ttl, cooldown time.Duration, log *zerolog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if cooldown < 0 {
		cooldown = DefaultCooldown
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		cooldown: cooldown,
		now:      time.Now,
		log:      log,
	}
}

func (r *Registry) Open(eventID, organizerID string) *Session {
	s := newSession(uuid.NewString(), eventID, organizerID, r.cooldown, r.now)

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	r.log.Debug().Str("session_id", s.id).Str("event_id", eventID).Msg("scan session opened")
	return s
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, apperr.NotFound("scan session not found")
	}
	return s, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return apperr.NotFound("scan session not found")
	}
	delete(r.sessions, id)
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("scan session janitor stopped")
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.log.Info().Int("removed", n).Msg("expired scan sessions swept")
			}
		}
	}
}
