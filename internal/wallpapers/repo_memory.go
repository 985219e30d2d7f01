package wallpapers

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores wallpapers in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu    sync.RWMutex
	byID  map[string]Wallpaper
	order map[string]int
	seq   int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:  make(map[string]Wallpaper),
		order: make(map[string]int),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, w Wallpaper) (Wallpaper, error) {
	if err := ctx.Err(); err != nil {
		return Wallpaper{}, err
	}
	if w.ID == "" {
		w.ID = newID()
	}
	now := time.Now().UTC()
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	if w.UpdatedAt.IsZero() {
		w.UpdatedAt = w.CreatedAt
	}
	w = w.withDefaults()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.byID[w.ID] = w
	r.order[w.ID] = r.seq
	return clone(w), nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Wallpaper, error) {
	return r.filter(ctx, func(Wallpaper) bool { return true })
}

func (r *MemoryRepo) ListByPoster(ctx context.Context, postedBy string) ([]Wallpaper, error) {
	return r.filter(ctx, func(w Wallpaper) bool { return w.PostedBy == postedBy })
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Wallpaper, error) {
	if err := ctx.Err(); err != nil {
		return Wallpaper{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[id]
	if !ok {
		return Wallpaper{}, ErrNotFound
	}
	return clone(w), nil
}

func (r *MemoryRepo) AddLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	return r.updateLikes(ctx, id, func(likes []string) []string {
		if slices.Contains(likes, userID) {
			return likes
		}
		return append(likes, userID)
	})
}

func (r *MemoryRepo) RemoveLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	return r.updateLikes(ctx, id, func(likes []string) []string {
		return slices.DeleteFunc(likes, func(v string) bool { return v == userID })
	})
}

func (r *MemoryRepo) updateLikes(ctx context.Context, id string, fn func([]string) []string) (Wallpaper, error) {
	if err := ctx.Err(); err != nil {
		return Wallpaper{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return Wallpaper{}, ErrNotFound
	}
	w.Likes = fn(slices.Clone(w.Likes))
	if w.Likes == nil {
		w.Likes = []string{}
	}
	w.UpdatedAt = time.Now().UTC()
	r.byID[id] = w
	return clone(w), nil
}

func (r *MemoryRepo) filter(ctx context.Context, keep func(Wallpaper) bool) ([]Wallpaper, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Wallpaper, 0, len(r.byID))
	seq := make(map[string]int, len(r.byID))
	for id, w := range r.byID {
		if keep(w) {
			out = append(out, clone(w))
			seq[id] = r.order[id]
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return seq[out[i].ID] > seq[out[j].ID]
	})
	return out, nil
}

func clone(w Wallpaper) Wallpaper {
	w.Tags = slices.Clone(w.Tags)
	w.Types = slices.Clone(w.Types)
	w.Likes = slices.Clone(w.Likes)
	return w
}

var _ Repo = (*MemoryRepo)(nil)
