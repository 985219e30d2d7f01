package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallpaper-backend/internal/shared/telemetry"
)

// Identity is the provider-side view of a user carried by a webhook event.
type Identity struct {
	ClerkID      string
	FirstName    string
	LastName     string
	PrimaryEmail string
	Emails       []string
	Username     string
	ImageURL     string
}

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// SyncFromProvider upserts the user described by id. Repeated deliveries of
// the same identity converge on a single record.
func (s *Service) SyncFromProvider(ctx context.Context, id Identity) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user, derived, err := userFromIdentity(id)
	if err != nil {
		return User{}, err
	}

	out, err := s.Repo.Upsert(ctx, user)
	if errors.Is(err, ErrConflict) && derived && user.Username != user.ClerkID {
		telemetry.Warn("user.username.conflict", map[string]any{
			"user_id":  user.ClerkID,
			"username": user.Username,
		})
		user.Username = user.ClerkID
		out, err = s.Repo.Upsert(ctx, user)
	}
	if err != nil {
		return User{}, fmt.Errorf("upsert user %s: %w", user.ClerkID, err)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, clerkID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(clerkID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, clerkID)
}

// userFromIdentity maps a provider identity onto a User. derived reports
// whether the username was synthesized rather than supplied.
func userFromIdentity(id Identity) (user User, derived bool, err error) {
	clerkID := strings.TrimSpace(id.ClerkID)
	if clerkID == "" {
		return User{}, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	email := resolveEmail(id)
	if email == "" {
		return User{}, false, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	username := strings.TrimSpace(id.Username)
	if username == "" {
		derived = true
		username = usernameFallback(email, clerkID)
	}

	return User{
		ClerkID:  clerkID,
		Email:    email,
		Username: username,
		FullName: strings.TrimSpace(strings.TrimSpace(id.FirstName) + " " + strings.TrimSpace(id.LastName)),
		ImageURL: strings.TrimSpace(id.ImageURL),
	}, derived, nil
}

func resolveEmail(id Identity) string {
	if primary := strings.TrimSpace(id.PrimaryEmail); primary != "" {
		return primary
	}
	for _, e := range id.Emails {
		if trimmed := strings.TrimSpace(e); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func usernameFallback(email, clerkID string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return clerkID
}
