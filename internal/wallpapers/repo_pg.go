package wallpapers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const wallpaperColumns = `id, title, description, tags, image_url, views, types, likes, posted_by, posted_by_name, created_at, updated_at`

type PGRepo struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Create(ctx context.Context, w Wallpaper) (Wallpaper, error) {
	if w.ID == "" {
		w.ID = newID()
	}
	w = w.withDefaults()
	const query = `
INSERT INTO wallpapers (id, title, description, tags, image_url, views, types, likes, posted_by, posted_by_name, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, COALESCE($11::timestamptz, now()), COALESCE($11::timestamptz, now()))
RETURNING ` + wallpaperColumns
	row := r.DB.QueryRowContext(ctx, query,
		w.ID,
		w.Title,
		w.Description,
		pq.Array(w.Tags),
		w.ImageURL,
		w.Views,
		pq.Array(w.Types),
		pq.Array(w.Likes),
		w.PostedBy,
		w.PostedByName,
		nullableTime(w),
	)
	return scanWallpaper(row)
}

func (r *PGRepo) List(ctx context.Context) ([]Wallpaper, error) {
	query := `SELECT ` + wallpaperColumns + ` FROM wallpapers ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query)
}

func (r *PGRepo) ListByPoster(ctx context.Context, postedBy string) ([]Wallpaper, error) {
	query := `SELECT ` + wallpaperColumns + ` FROM wallpapers WHERE posted_by = $1 ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, postedBy)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Wallpaper, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Wallpaper{}, ErrNotFound
	}
	query := `SELECT ` + wallpaperColumns + ` FROM wallpapers WHERE id = $1`
	return notFound(scanWallpaper(r.DB.QueryRowContext(ctx, query, id)))
}

func (r *PGRepo) AddLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	const query = `
UPDATE wallpapers
SET likes = CASE WHEN $2::text = ANY(likes) THEN likes ELSE array_append(likes, $2::text) END,
    updated_at = now()
WHERE id = $1
RETURNING ` + wallpaperColumns
	return r.updateLikes(ctx, query, id, userID)
}

func (r *PGRepo) RemoveLike(ctx context.Context, id, userID string) (Wallpaper, error) {
	const query = `
UPDATE wallpapers
SET likes = array_remove(likes, $2::text), updated_at = now()
WHERE id = $1
RETURNING ` + wallpaperColumns
	return r.updateLikes(ctx, query, id, userID)
}

func (r *PGRepo) updateLikes(ctx context.Context, query, id, userID string) (Wallpaper, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Wallpaper{}, ErrNotFound
	}
	return notFound(scanWallpaper(r.DB.QueryRowContext(ctx, query, id, userID)))
}

func (r *PGRepo) query(ctx context.Context, query string, args ...any) ([]Wallpaper, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Wallpaper{}
	for rows.Next() {
		w, err := scanWallpaper(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func scanWallpaper(row rowScanner) (Wallpaper, error) {
	var w Wallpaper
	err := row.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		pq.Array(&w.Tags),
		&w.ImageURL,
		&w.Views,
		pq.Array(&w.Types),
		pq.Array(&w.Likes),
		&w.PostedBy,
		&w.PostedByName,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return Wallpaper{}, err
	}
	return w.withDefaults(), nil
}

func notFound(w Wallpaper, err error) (Wallpaper, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return Wallpaper{}, ErrNotFound
	}
	return w, err
}

func nullableTime(w Wallpaper) any {
	if w.CreatedAt.IsZero() {
		return nil
	}
	return w.CreatedAt
}

var _ Repo = (*PGRepo)(nil)
