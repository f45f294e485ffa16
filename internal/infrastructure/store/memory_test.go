package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func TestMemoryMealStore_SaveAndGet(t *testing.T) {
	s := NewMemoryMealStore()
	ctx := context.Background()

	record := &domain.MealRecord{
		UserID:    "user-1",
		RequestID: "req-1",
		Analysis:  domain.NormalizedAnalysis{Description: "Grilled chicken salad"},
	}

	require.NoError(t, s.Save(ctx, record))
	assert.NotEmpty(t, record.ID, "Save should assign an id")
	assert.False(t, record.CreatedAt.IsZero(), "Save should stamp CreatedAt")

	got, err := s.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grilled chicken salad", got.Analysis.Description)
	assert.Equal(t, "user-1", got.UserID)
}

func TestMemoryMealStore_GetMissing(t *testing.T) {
	s := NewMemoryMealStore()

	_, err := s.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrMealNotFound)
}

func TestMemoryMealStore_ListByUser(t *testing.T) {
	s := NewMemoryMealStore()
	ctx := context.Background()

	older := &domain.MealRecord{UserID: "user-1", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &domain.MealRecord{UserID: "user-1", CreatedAt: time.Now()}
	other := &domain.MealRecord{UserID: "user-2"}

	require.NoError(t, s.Save(ctx, older))
	require.NoError(t, s.Save(ctx, newer))
	require.NoError(t, s.Save(ctx, other))

	meals, err := s.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, newer.ID, meals[0].ID, "newest meal should come first")
	assert.Equal(t, older.ID, meals[1].ID)
}

func TestMemoryImageStore_PutAndGet(t *testing.T) {
	s := NewMemoryImageStore()

	url, err := s.Put(context.Background(), "meals/abc.jpg", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "memory://images/meals/abc.jpg", url)

	data, ok := s.Get("meals/abc.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}

func TestMemoryImageStore_PutCopiesData(t *testing.T) {
	s := NewMemoryImageStore()

	original := []byte{1, 2, 3}
	_, err := s.Put(context.Background(), "k", original, "image/png")
	require.NoError(t, err)

	original[0] = 9

	data, _ := s.Get("k")
	assert.Equal(t, byte(1), data[0], "stored bytes should not alias caller's slice")
}
