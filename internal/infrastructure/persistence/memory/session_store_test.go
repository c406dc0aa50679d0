package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/crp/internal/domain/models"
	"github.com/turtacn/crp/pkg/constants"
	apperrors "github.com/turtacn/crp/pkg/errors"
	"github.com/turtacn/crp/pkg/logger"
)

func TestSessionStore_CreateGet(t *testing.T) {
	store := NewSessionStore(time.Minute, logger.NewNoopLogger())
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.True(t, apperrors.Is(err, constants.ErrCodeSessionNotFound))

	created, err := store.Create(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.PhaseIdle, created.Phase)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)

	// callers get copies
	got.Fields.Age = "40"
	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, again.Fields.Age)

	// create is idempotent
	_, err = store.Update(ctx, "s1", func(s *models.FormState) error {
		s.Fields.Age = "41"
		return nil
	})
	require.NoError(t, err)
	existing, err := store.Create(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "41", existing.Fields.Age)
	assert.Equal(t, 1, store.Len())
}

func TestSessionStore_UpdateAbort(t *testing.T) {
	store := NewSessionStore(time.Minute, logger.NewNoopLogger())
	ctx := context.Background()
	_, err := store.Create(ctx, "s1")
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = store.Update(ctx, "s1", func(s *models.FormState) error {
		s.Fields.Age = "99"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got.Fields.Age)

	_, err = store.Update(ctx, "nope", func(*models.FormState) error { return nil })
	assert.True(t, apperrors.Is(err, constants.ErrCodeSessionNotFound))
}

func TestSessionStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	store := NewSessionStore(time.Minute, logger.NewNoopLogger())
	ctx := context.Background()
	_, err := store.Create(ctx, "s1")
	require.NoError(t, err)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "s1", func(s *models.FormState) error {
				s.BeginSubmission(time.Now())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, uint64(workers), got.Generation)
}

func TestSessionStore_ExpiryAndDelete(t *testing.T) {
	store := NewSessionStore(20*time.Millisecond, logger.NewNoopLogger())
	ctx := context.Background()

	_, err := store.Create(ctx, "short")
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = store.Get(ctx, "short")
	assert.Error(t, err)

	_, err = store.Create(ctx, "s2")
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "s2"))
	require.NoError(t, store.Delete(ctx, "s2"))
	_, err = store.Get(ctx, "s2")
	assert.Error(t, err)

	assert.NoError(t, store.Ping(ctx))
}
