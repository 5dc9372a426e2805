package userprofile_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/experimentkit/pkg/userprofile"
)

func TestMemoryLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("UnknownUserIsEmptyProfile", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		profile, err := store.Lookup(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("EmptyUserID", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		_, err := store.Lookup(ctx, "")
		assert.ErrorIs(t, err, userprofile.ErrEmptyUserID)
	})

	t.Run("ReturnsCopy", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		require.NoError(t, store.Save(ctx, "user-1", "223", "276"))

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		profile["223"] = "tampered"

		fresh, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "276", fresh["223"])
	})
}

func TestMemorySave(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		require.NoError(t, store.Save(ctx, "user-1", "223", "276"))
		require.NoError(t, store.Save(ctx, "user-1", "224", "280"))

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"223": "276", "224": "280"}, profile)
	})

	t.Run("OverwritesDecision", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		require.NoError(t, store.Save(ctx, "user-1", "223", "276"))
		require.NoError(t, store.Save(ctx, "user-1", "223", "277"))

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, "277", profile["223"])
	})

	t.Run("ValidatesInput", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory()
		assert.ErrorIs(t, store.Save(ctx, "", "223", "276"), userprofile.ErrEmptyUserID)
		assert.ErrorIs(t, store.Save(ctx, "user-1", "", "276"), userprofile.ErrInvalidProfile)
		assert.ErrorIs(t, store.Save(ctx, "user-1", "223", ""), userprofile.ErrInvalidProfile)
	})

	t.Run("MaxEntriesEvicts", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory(userprofile.WithMaxEntries(2))
		require.NoError(t, store.Save(ctx, "user-1", "223", "276"))
		require.NoError(t, store.Save(ctx, "user-2", "223", "276"))
		require.NoError(t, store.Save(ctx, "user-3", "223", "276"))
		assert.Equal(t, 2, store.Len())
	})

	t.Run("ExistingUserNeverEvicted", func(t *testing.T) {
		t.Parallel()
		store := userprofile.NewMemory(userprofile.WithMaxEntries(1))
		require.NoError(t, store.Save(ctx, "user-1", "223", "276"))
		require.NoError(t, store.Save(ctx, "user-1", "224", "280"))
		assert.Equal(t, 1, store.Len())

		profile, err := store.Lookup(ctx, "user-1")
		require.NoError(t, err)
		assert.Len(t, profile, 2)
	})
}

func TestMemoryConcurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := userprofile.NewMemory()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 200 {
				_ = store.Save(ctx, "user-1", "223", "276")
			}
		}()
		go func() {
			defer wg.Done()
			for range 200 {
				profile, err := store.Lookup(ctx, "user-1")
				assert.NoError(t, err)
				if v, ok := profile["223"]; ok {
					assert.Equal(t, "276", v)
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewRedis(t *testing.T) {
	t.Parallel()

	t.Run("NilClient", func(t *testing.T) {
		t.Parallel()
		_, err := userprofile.NewRedis(nil)
		assert.ErrorIs(t, err, userprofile.ErrNilClient)
	})
}
