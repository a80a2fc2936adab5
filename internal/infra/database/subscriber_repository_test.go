package database

import (
	"context"
	"testing"
	"time"

	"launch_notifier/internal/domain/subscriber"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSubscriber(id string, telegramID int64, created time.Time) *subscriber.Subscriber {
	return &subscriber.Subscriber{
		ID:         id,
		TelegramID: telegramID,
		FirstName:  "Ada",
		IsActive:   true,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestSubscriberRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriberRepository(openTestDB(t))
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newSubscriber("s-1", 1001, created)))

	got, err := repo.GetByTelegramID(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.ID)
	assert.Equal(t, "Ada", got.FirstName)
	assert.True(t, got.IsActive)
	assert.True(t, got.CreatedAt.Equal(created))

	_, err = repo.GetByTelegramID(ctx, 42)
	assert.ErrorIs(t, err, subscriber.ErrSubscriberNotFound)
}

func TestSubscriberRepository_DuplicateTelegramID(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriberRepository(openTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newSubscriber("s-1", 1001, now)))
	err := repo.Create(ctx, newSubscriber("s-2", 1001, now))
	assert.ErrorIs(t, err, subscriber.ErrDuplicateTelegramID)
}

func TestSubscriberRepository_UpdateAndListActive(t *testing.T) {
	ctx := context.Background()
	repo := NewSubscriberRepository(openTestDB(t))
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	first := newSubscriber("s-1", 1001, base)
	second := newSubscriber("s-2", 1002, base.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	first.IsActive = false
	first.UpdatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, first))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1002), active[0].TelegramID)

	assert.ErrorIs(t, repo.Update(ctx, newSubscriber("missing", 7, base)), subscriber.ErrSubscriberNotFound)
}
