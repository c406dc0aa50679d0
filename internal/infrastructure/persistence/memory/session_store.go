// Package memory provides an in-process session store.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/repository"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

var _ repository.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps sessions in a go-cache with sliding expiry.
// Updates are serialized by a single mutex; reads never see a partial update
// because the cache only holds copies.
type SessionStore struct {
	mu    sync.Mutex
	items *cache.Cache
	ttl   time.Duration
	now   func() time.Time
	log   logger.Logger
}

// NewSessionStore creates a store whose idle sessions expire after ttl.
func NewSessionStore(ttl time.Duration, log logger.Logger) *SessionStore {
	return &SessionStore{
		items: cache.New(ttl, 2*ttl),
		ttl:   ttl,
		now:   time.Now,
		log:   log.WithComponent("memory_session_store"),
	}
}

func (s *SessionStore) Get(ctx context.Context, id string) (*models.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.load(id)
	if !ok {
		return nil, errors.ErrSessionNotFound(id)
	}
	s.items.Set(id, state, s.ttl)
	return state.Clone(), nil
}

// Create returns the existing session when id is already in use.
func (s *SessionStore) Create(ctx context.Context, id string) (*models.FormState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.load(id); ok {
		return state.Clone(), nil
	}

	state := models.NewFormState(id, s.now().UTC())
	s.items.Set(id, state, s.ttl)
	s.log.Debug(ctx, "Session created", logger.Fields{"session_id": id})
	return state.Clone(), nil
}

func (s *SessionStore) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*models.FormState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.load(id)
	if !ok {
		return nil, errors.ErrSessionNotFound(id)
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	s.items.Set(id, next, s.ttl)
	return next.Clone(), nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items.Delete(id)
	return nil
}

// Ping always succeeds.
func (s *SessionStore) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.items.ItemCount()
}

func (s *SessionStore) load(id string) (*models.FormState, bool) {
	v, ok := s.items.Get(id)
	if !ok {
		return nil, false
	}
	state, ok := v.(*models.FormState)
	return state, ok
}
