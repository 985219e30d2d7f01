package wallpapers

import (
	"context"

	"github.com/google/uuid"
)

// Repo persists wallpapers. Likes are updated atomically by the store.
type Repo interface {
	// Create stores w, assigning an ID when empty, and returns the stored record.
	Create(ctx context.Context, w Wallpaper) (Wallpaper, error)
	// List returns all wallpapers, newest first.
	List(ctx context.Context) ([]Wallpaper, error)
	// ListByPoster returns wallpapers whose postedBy matches, newest first.
	ListByPoster(ctx context.Context, postedBy string) ([]Wallpaper, error)
	GetByID(ctx context.Context, id string) (Wallpaper, error)
	// AddLike adds userID to the likes set and returns the updated record.
	AddLike(ctx context.Context, id, userID string) (Wallpaper, error)
	// RemoveLike removes userID from the likes set and returns the updated record.
	RemoveLike(ctx context.Context, id, userID string) (Wallpaper, error)
}

// newID returns a UUIDv7, so ids created later sort after earlier ones and
// break created_at ties in insertion order.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
