package redis

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/internal/domain/repository"
	"github.com/turtacn/crp/internal/domain/service"
	"github.com/turtacn/crp/pkg/constants"
	"github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

var _ repository.SessionRepository = (*SessionStore)(nil)

// SessionStore keeps sessions as JSON strings under crp:session:{id}.
// Updates run in a WATCH/MULTI transaction and are retried on conflict.
type SessionStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	metrics service.Metrics
	now     func() time.Time
	log     logger.Logger
}

// NewSessionStore creates a Redis backed session store.
func NewSessionStore(client redis.UniversalClient, ttl time.Duration, metrics service.Metrics, log logger.Logger) *SessionStore {
	if metrics == nil {
		metrics = service.NoopMetrics{}
	}
	return &SessionStore{
		client:  client,
		ttl:     ttl,
		metrics: metrics,
		now:     time.Now,
		log:     log.WithComponent("redis_session_store"),
	}
}

func sessionKey(id string) string {
	return constants.SessionKeyPrefix + id
}

func (s *SessionStore) Get(ctx context.Context, id string) (*models.FormState, error) {
	key := sessionKey(id)
	data, err := s.client.GetEx(ctx, key, s.ttl).Bytes()
	if err != nil {
		if goerrors.Is(err, redis.Nil) {
			return nil, errors.ErrSessionNotFound(id)
		}
		return nil, errors.ErrInternal("failed to read session").WithCause(err)
	}
	return decodeState(data)
}

// Create returns the existing session when id is already in use.
func (s *SessionStore) Create(ctx context.Context, id string) (*models.FormState, error) {
	state := models.NewFormState(id, s.now().UTC())
	data, err := json.Marshal(state)
	if err != nil {
		return nil, errors.ErrInternal("failed to encode session").WithCause(err)
	}

	created, err := s.client.SetNX(ctx, sessionKey(id), data, s.ttl).Result()
	if err != nil {
		return nil, errors.ErrInternal("failed to create session").WithCause(err)
	}
	if !created {
		return s.Get(ctx, id)
	}

	s.log.Debug(ctx, "Session created", logger.Fields{"session_id": id})
	return state, nil
}

func (s *SessionStore) Update(ctx context.Context, id string, fn repository.UpdateFunc) (*models.FormState, error) {
	key := sessionKey(id)
	var result *models.FormState

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if goerrors.Is(err, redis.Nil) {
				return errors.ErrSessionNotFound(id)
			}
			return errors.ErrInternal("failed to read session").WithCause(err)
		}

		state, err := decodeState(data)
		if err != nil {
			return err
		}
		if err := fn(state); err != nil {
			return err
		}

		encoded, err := json.Marshal(state)
		if err != nil {
			return errors.ErrInternal("failed to encode session").WithCause(err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			result = state
		}
		return err
	}

	for attempt := 0; attempt < constants.SessionUpdateMaxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if goerrors.Is(err, redis.TxFailedErr) {
			s.metrics.RecordSessionUpdateConflict(string(constants.SessionBackendRedis))
			continue
		}
		return nil, err
	}

	s.log.Warn(ctx, "Session update gave up after conflicts", logger.Fields{
		"session_id": id,
		"attempts":   constants.SessionUpdateMaxRetries,
	})
	return nil, errors.ErrInternal(fmt.Sprintf("session update conflicted %d times", constants.SessionUpdateMaxRetries))
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return errors.ErrInternal("failed to delete session").WithCause(err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeState(data []byte) (*models.FormState, error) {
	var state models.FormState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.ErrInternal("stored session is corrupt").WithCause(err)
	}
	return &state, nil
}
