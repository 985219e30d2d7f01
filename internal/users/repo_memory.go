package users

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores users in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{users: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, other := range r.users {
		if id == user.ClerkID {
			continue
		}
		if other.Email == user.Email || (user.Username != "" && other.Username == user.Username) {
			return User{}, ErrConflict
		}
	}

	now := time.Now().UTC()
	existing, ok := r.users[user.ClerkID]
	if ok {
		user.CreatedAt = existing.CreatedAt
		user.LikedWallpapers = existing.LikedWallpapers
		user.PostWallpapers = existing.PostWallpapers
	} else {
		user.CreatedAt = now
		user.LikedWallpapers = nil
		user.PostWallpapers = nil
	}
	user.UpdatedAt = now
	user = user.withDefaults()
	r.users[user.ClerkID] = user
	return clone(user), nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, clerkID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[clerkID]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(user), nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ClerkID < out[j].ClerkID })
	return out, nil
}

func (r *MemoryRepo) AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[clerkID]
	if !ok {
		return false, ErrNotFound
	}
	if slices.Contains(user.PostWallpapers, wallpaperID) {
		return false, nil
	}
	user.PostWallpapers = append(slices.Clone(user.PostWallpapers), wallpaperID)
	user.UpdatedAt = time.Now().UTC()
	r.users[clerkID] = user
	return true, nil
}

func (r *MemoryRepo) RemovePosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[clerkID]
	if !ok {
		return false, ErrNotFound
	}
	idx := slices.Index(user.PostWallpapers, wallpaperID)
	if idx < 0 {
		return false, nil
	}
	user.PostWallpapers = slices.Delete(slices.Clone(user.PostWallpapers), idx, idx+1)
	user.UpdatedAt = time.Now().UTC()
	r.users[clerkID] = user
	return true, nil
}

func clone(u User) User {
	u.LikedWallpapers = slices.Clone(u.LikedWallpapers)
	u.PostWallpapers = slices.Clone(u.PostWallpapers)
	return u
}

var _ Repo = (*MemoryRepo)(nil)
