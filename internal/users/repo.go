package users

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no user has the given identifier.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a unique email or username already belongs to another user.
	ErrConflict = errors.New("user conflict")
)

// Repo persists users keyed by their identity-provider id.
type Repo interface {
	// Upsert creates or updates the identity fields of a user. Wallpaper
	// lists and CreatedAt are preserved on update.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, clerkID string) (User, error)
	List(ctx context.Context) ([]User, error)
	// AppendPosted adds wallpaperID to the user's posted list if absent and
	// reports whether it was added.
	AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error)
	// RemovePosted removes wallpaperID from the posted list and reports
	// whether it was present.
	RemovePosted(ctx context.Context, clerkID, wallpaperID string) (bool, error)
}
