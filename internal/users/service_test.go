package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncFromProviderBuildsUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.SyncFromProvider(context.Background(), Identity{
		ClerkID:      "user_1",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		PrimaryEmail: "ada@example.com",
		Emails:       []string{"other@example.com", "ada@example.com"},
		ImageURL:     "https://img.clerk.com/ada.png",
	})
	require.NoError(t, err)

	assert.Equal(t, "user_1", user.ClerkID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "ada", user.Username)
	assert.Equal(t, "https://img.clerk.com/ada.png", user.ImageURL)
	assert.Equal(t, []string{}, user.PostWallpapers)
	assert.Equal(t, []string{}, user.LikedWallpapers)
}

func TestSyncFromProviderFallsBackToFirstEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	user, err := svc.SyncFromProvider(context.Background(), Identity{
		ClerkID:  "user_1",
		Emails:   []string{" ", "first@example.com"},
		Username: "picked",
	})
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", user.Email)
	assert.Equal(t, "picked", user.Username)
	assert.Equal(t, "", user.FullName)
}

func TestSyncFromProviderRejectsMissingIDOrEmail(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_, err := svc.SyncFromProvider(context.Background(), Identity{PrimaryEmail: "a@example.com"})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.SyncFromProvider(context.Background(), Identity{ClerkID: "user_1"})
	require.ErrorIs(t, err, ErrInvalidInput)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSyncFromProviderIsIdempotent(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	id := Identity{ClerkID: "user_1", PrimaryEmail: "a@example.com"}

	first, err := svc.SyncFromProvider(context.Background(), id)
	require.NoError(t, err)
	_, err = repo.AppendPosted(context.Background(), "user_1", "w1")
	require.NoError(t, err)

	id.FirstName = "Updated"
	second, err := svc.SyncFromProvider(context.Background(), id)
	require.NoError(t, err)

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Updated", second.FullName)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, []string{"w1"}, second.PostWallpapers)
}

func TestSyncFromProviderRetriesDerivedUsernameConflict(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	_, err := svc.SyncFromProvider(context.Background(), Identity{ClerkID: "user_1", PrimaryEmail: "sam@a.com"})
	require.NoError(t, err)

	second, err := svc.SyncFromProvider(context.Background(), Identity{ClerkID: "user_2", PrimaryEmail: "sam@b.com"})
	require.NoError(t, err)
	assert.Equal(t, "user_2", second.Username)
}

func TestSyncFromProviderSurfacesEmailConflict(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	_, err := svc.SyncFromProvider(context.Background(), Identity{ClerkID: "user_1", PrimaryEmail: "a@example.com", Username: "one"})
	require.NoError(t, err)

	_, err = svc.SyncFromProvider(context.Background(), Identity{ClerkID: "user_2", PrimaryEmail: "a@example.com", Username: "two"})
	require.True(t, errors.Is(err, ErrConflict), "got %v", err)
}

func TestUsernameFallback(t *testing.T) {
	assert.Equal(t, "jane", usernameFallback("jane@example.com", "user_1"))
	assert.Equal(t, "user_1", usernameFallback("@example.com", "user_1"))
	assert.Equal(t, "user_1", usernameFallback("no-at-sign", "user_1"))
}

func TestMemoryRepoPostedListIsASet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	_, err := repo.Upsert(ctx, User{ClerkID: "u1", Email: "u1@example.com"})
	require.NoError(t, err)

	added, err := repo.AppendPosted(ctx, "u1", "w1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AppendPosted(ctx, "u1", "w1")
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := repo.RemovePosted(ctx, "u1", "missing")
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = repo.RemovePosted(ctx, "u1", "w1")
	require.NoError(t, err)
	assert.True(t, removed)

	_, err = repo.AppendPosted(ctx, "ghost", "w1")
	require.ErrorIs(t, err, ErrNotFound)
}
