package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-reviewer/internal/core"
)

func TestMemoryStore_NewestFirstPerOwner(t *testing.T) {
	store := NewMemoryStore().(*memoryStore)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()

	for _, r := range []core.StoredReview{
		{Owner: "alice", Code: "a1", Review: "r", Model: "gemini-pro"},
		{Owner: "bob", Code: "b1", Review: "r", Model: "gemini-pro"},
		{Owner: "alice", Code: "a2", Review: "r", Model: "openai-gpt-3.5"},
	} {
		require.NoError(t, store.SaveReview(ctx, &r))
	}

	got, err := store.ListReviews(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].Code)
	assert.Equal(t, "a1", got[1].Code)
	assert.True(t, got[0].CreatedAt.After(got[1].CreatedAt))

	none, err := store.ListReviews(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStore_AssignsIDs(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := &core.StoredReview{Owner: "alice", Code: "a", Review: "r", Model: "gemini-pro"}
	second := &core.StoredReview{Owner: "alice", Code: "b", Review: "r", Model: "gemini-pro"}
	require.NoError(t, store.SaveReview(ctx, first))
	require.NoError(t, store.SaveReview(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestMemoryStore_RejectsIncompleteRecord(t *testing.T) {
	err := NewMemoryStore().SaveReview(context.Background(), &core.StoredReview{Code: "a", Review: "r", Model: "m"})
	assert.True(t, core.IsValidationError(err))
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.SaveReview(ctx, &core.StoredReview{Owner: "alice", Code: "c", Review: "r", Model: "gemini-pro"})
		}()
	}
	wg.Wait()

	got, err := store.ListReviews(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, got, 50)
}
