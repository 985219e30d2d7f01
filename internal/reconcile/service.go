package reconcile

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"wallpaper-backend/internal/shared/metrics"
	"wallpaper-backend/internal/shared/telemetry"
	"wallpaper-backend/internal/users"
	"wallpaper-backend/internal/wallpapers"
)

// WallpaperLister lists every wallpaper.
type WallpaperLister interface {
	List(ctx context.Context) ([]wallpapers.Wallpaper, error)
}

// UserStore is the slice of users.Repo the sweep needs.
type UserStore interface {
	List(ctx context.Context) ([]users.User, error)
	AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error)
	RemovePosted(ctx context.Context, clerkID, wallpaperID string) (bool, error)
}

// Result summarizes one sweep.
type Result struct {
	Scanned  int `json:"scanned"`
	Linked   int `json:"linked"`
	Unlinked int `json:"unlinked"`
	Orphaned int `json:"orphaned"`
}

// Service repairs drift between wallpapers and each user's posted list.
type Service struct {
	Wallpapers WallpaperLister
	Users      UserStore
}

func NewService(walls WallpaperLister, store UserStore) *Service {
	return &Service{Wallpapers: walls, Users: store}
}

// Sweep makes every user's posted list equal the set of wallpapers whose
// postedBy is that user. Users are read before wallpapers: wallpapers are
// never deleted, so any id in a user snapshot is present in the later
// wallpaper snapshot unless it is genuinely stale.
func (s *Service) Sweep(ctx context.Context) (Result, error) {
	if s == nil || s.Wallpapers == nil || s.Users == nil {
		return Result{}, errors.New("reconcile service not configured")
	}

	allUsers, err := s.Users.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list users: %w", err)
	}
	walls, err := s.Wallpapers.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list wallpapers: %w", err)
	}

	res := Result{Scanned: len(walls)}
	owner := make(map[string]string, len(walls))
	byPoster := make(map[string][]string)
	for _, w := range walls {
		owner[w.ID] = w.PostedBy
		if w.PostedBy != "" {
			byPoster[w.PostedBy] = append(byPoster[w.PostedBy], w.ID)
		}
	}

	var errs []error
	known := make(map[string]bool, len(allUsers))
	for _, u := range allUsers {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		known[u.ClerkID] = true

		for _, id := range byPoster[u.ClerkID] {
			if slices.Contains(u.PostWallpapers, id) {
				continue
			}
			added, err := s.Users.AppendPosted(ctx, u.ClerkID, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("link %s to %s: %w", id, u.ClerkID, err))
				continue
			}
			if added {
				res.Linked++
			}
		}

		for _, id := range u.PostWallpapers {
			if owner[id] == u.ClerkID {
				continue
			}
			removed, err := s.Users.RemovePosted(ctx, u.ClerkID, id)
			if err != nil {
				errs = append(errs, fmt.Errorf("unlink %s from %s: %w", id, u.ClerkID, err))
				continue
			}
			if removed {
				res.Unlinked++
			}
		}
	}

	orphans := make([]string, 0)
	for poster := range byPoster {
		if !known[poster] {
			orphans = append(orphans, poster)
		}
	}
	sort.Strings(orphans)
	for _, poster := range orphans {
		res.Orphaned += len(byPoster[poster])
		telemetry.Warn("reconcile.orphaned", map[string]any{
			"user_id":    poster,
			"wallpapers": len(byPoster[poster]),
		})
	}

	metrics.AddReconcile(res.Linked, res.Unlinked, res.Orphaned)
	telemetry.Info("reconcile.sweep", map[string]any{
		"scanned":  res.Scanned,
		"linked":   res.Linked,
		"unlinked": res.Unlinked,
		"orphaned": res.Orphaned,
		"errors":   len(errs),
	})
	return res, errors.Join(errs...)
}
