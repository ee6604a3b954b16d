// Package session maps opaque session ids to owned game instances.
// Sessions are created on first contact, touched on every access and
// garbage-collected after a TTL of silence.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"sovereign.ai/internal/sim/game"
)

// Factory builds the game instance for a new session.
type Factory func(sessionID string) *game.Game

type Handle struct {
	ID      string
	Game    *game.Game
	created time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

func (h *Handle) touch(now time.Time) {
	h.mu.Lock()
	h.lastSeen = now
	h.mu.Unlock()
}

func (h *Handle) seen() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastSeen
}

type Store struct {
	factory Factory
	ttl     time.Duration
	log     *log.Logger

	mu   sync.Mutex
	byID map[string]*Handle
}

func NewStore(factory Factory, ttl time.Duration, logger *log.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		factory: factory,
		ttl:     ttl,
		log:     logger,
		byID:    map[string]*Handle{},
	}
}

// Create mints a new session with a fresh uuid.
func (s *Store) Create() *Handle {
	id := uuid.NewString()
	now := time.Now()
	h := &Handle{
		ID:       id,
		Game:     s.factory(id),
		created:  now,
		lastSeen: now,
	}
	s.mu.Lock()
	s.byID[id] = h
	s.mu.Unlock()
	if s.log != nil {
		s.log.Printf("session: created %s", id)
	}
	return h
}

// Get returns the session and refreshes its TTL.
func (s *Store) Get(id string) (*Handle, bool) {
	s.mu.Lock()
	h, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	h.touch(time.Now())
	return h, true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Run garbage-collects expired sessions until ctx is done.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.expire(now)
		}
	}
}

func (s *Store) expire(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.byID {
		if now.Sub(h.seen()) > s.ttl {
			delete(s.byID, id)
			if s.log != nil {
				s.log.Printf("session: expired %s", id)
			}
		}
	}
}
