package wallpapers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"wallpaper-backend/internal/shared/metrics"
	"wallpaper-backend/internal/shared/storage/object"
	"wallpaper-backend/internal/shared/telemetry"
)

// DefaultFolder is the logical folder uploads are placed in.
const DefaultFolder = "/wallpapers"

// LikeAction is the value of doing that adds a like. Any other value removes it.
const LikeAction = "like"

// UserLinker records a wallpaper against its poster.
type UserLinker interface {
	AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error)
}

type Service struct {
	Repo   Repo
	Store  object.ObjectStore
	Users  UserLinker
	Folder string
	Now    func() time.Time
}

// UploadInput carries the multipart fields of an upload.
type UploadInput struct {
	Image        io.Reader
	FileName     string
	Title        string
	Description  string
	Tags         string
	Type         string
	PostedBy     string
	PostedByName string
}

// LikeInput identifies a like toggle.
type LikeInput struct {
	WallpaperID string
	UserID      string
	Doing       string
}

func NewService(repo Repo, store object.ObjectStore, users UserLinker) *Service {
	return &Service{Repo: repo, Store: store, Users: users, Folder: DefaultFolder}
}

// Upload stores the image, then records the wallpaper, then links it to the
// poster. A record is only written after the image is stored. Linking is
// best effort and never fails the upload.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Wallpaper, error) {
	if s == nil || s.Repo == nil || s.Store == nil {
		return Wallpaper{}, errors.New("wallpapers service not configured")
	}
	start := time.Now()

	if in.Image == nil {
		return Wallpaper{}, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Wallpaper{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	types, err := ParseTypes(in.Type)
	if err != nil {
		return Wallpaper{}, err
	}
	fileName := strings.TrimSpace(in.FileName)
	if fileName == "" {
		fileName = "wallpaper"
	}

	obj, err := s.Store.Save(ctx, s.folder(), fileName, in.Image)
	if err != nil {
		metrics.IncUploadFailure()
		if errors.Is(err, object.ErrEmptyObject) {
			return Wallpaper{}, fmt.Errorf("%w: image is empty", ErrInvalidInput)
		}
		if errors.Is(err, object.ErrInvalidFileName) {
			return Wallpaper{}, fmt.Errorf("%w: invalid image file name", ErrInvalidInput)
		}
		return Wallpaper{}, fmt.Errorf("store image: %w", err)
	}

	now := s.now()
	created, err := s.Repo.Create(ctx, Wallpaper{
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Tags:         ParseTags(in.Tags),
		ImageURL:     obj.URL,
		Types:        types,
		Likes:        []string{},
		PostedBy:     strings.TrimSpace(in.PostedBy),
		PostedByName: strings.TrimSpace(in.PostedByName),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		metrics.IncUploadFailure()
		telemetry.Error("wallpaper.create.failed", map[string]any{
			"object_key": obj.Key,
			"err":        err,
		})
		return Wallpaper{}, fmt.Errorf("create wallpaper: %w", err)
	}

	s.link(ctx, created)

	metrics.IncUpload()
	metrics.ObserveUploadDurationMs(float64(time.Since(start).Milliseconds()))
	telemetry.Info("wallpaper.created", map[string]any{
		"wallpaper_id": created.ID,
		"user_id":      created.PostedBy,
		"object_key":   obj.Key,
		"size_bytes":   obj.SizeBytes,
		"mime_type":    obj.MimeType,
	})
	return created, nil
}

func (s *Service) link(ctx context.Context, w Wallpaper) {
	if w.PostedBy == "" || s.Users == nil {
		return
	}
	if _, err := s.Users.AppendPosted(ctx, w.PostedBy, w.ID); err != nil {
		metrics.IncLinkFailure()
		telemetry.Warn("wallpaper.link.failed", map[string]any{
			"wallpaper_id": w.ID,
			"user_id":      w.PostedBy,
			"err":          err,
		})
	}
}

// Feed returns every wallpaper, newest first.
func (s *Service) Feed(ctx context.Context) ([]Wallpaper, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("wallpapers service not configured")
	}
	return s.Repo.List(ctx)
}

// ListByPoster returns the wallpapers posted by userID, newest first.
func (s *Service) ListByPoster(ctx context.Context, userID string) ([]Wallpaper, error) {
	if s == nil || s.Repo == nil {
		return nil, errors.New("wallpapers service not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByPoster(ctx, userID)
}

// Like adds or removes a user's like and returns the updated wallpaper.
func (s *Service) Like(ctx context.Context, in LikeInput) (Wallpaper, error) {
	if s == nil || s.Repo == nil {
		return Wallpaper{}, errors.New("wallpapers service not configured")
	}
	wallpaperID := strings.TrimSpace(in.WallpaperID)
	userID := strings.TrimSpace(in.UserID)
	if wallpaperID == "" || userID == "" {
		return Wallpaper{}, fmt.Errorf("%w: wallpaperId and userId are required", ErrInvalidInput)
	}

	like := in.Doing == LikeAction
	var (
		out Wallpaper
		err error
	)
	if like {
		out, err = s.Repo.AddLike(ctx, wallpaperID, userID)
	} else {
		out, err = s.Repo.RemoveLike(ctx, wallpaperID, userID)
	}
	if err != nil {
		return Wallpaper{}, err
	}
	metrics.IncLike(like)
	return out, nil
}

func (s *Service) folder() string {
	if s.Folder == "" {
		return DefaultFolder
	}
	return s.Folder
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
