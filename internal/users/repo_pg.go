package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const userColumns = `clerk_id, email, username, full_name, image_url, liked_wallpapers, post_wallpapers, created_at, updated_at`

type PGRepo struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (clerk_id, email, username, full_name, image_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())
ON CONFLICT (clerk_id) DO UPDATE SET
  email = EXCLUDED.email,
  username = EXCLUDED.username,
  full_name = EXCLUDED.full_name,
  image_url = EXCLUDED.image_url,
  updated_at = now()
RETURNING ` + userColumns
	row := r.DB.QueryRowContext(ctx, query,
		user.ClerkID,
		user.Email,
		nullableString(user.Username),
		user.FullName,
		user.ImageURL,
	)
	out, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
		}
		return User{}, err
	}
	return out, nil
}

func (r *PGRepo) GetByID(ctx context.Context, clerkID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1 LIMIT 1`
	user, err := scanUser(r.DB.QueryRowContext(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY clerk_id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

func (r *PGRepo) AppendPosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	const query = `
UPDATE users
SET post_wallpapers = array_append(post_wallpapers, $2::text), updated_at = now()
WHERE clerk_id = $1 AND NOT ($2::text = ANY(post_wallpapers))`
	return r.mutateArray(ctx, query, clerkID, wallpaperID)
}

func (r *PGRepo) RemovePosted(ctx context.Context, clerkID, wallpaperID string) (bool, error) {
	const query = `
UPDATE users
SET post_wallpapers = array_remove(post_wallpapers, $2::text), updated_at = now()
WHERE clerk_id = $1 AND $2::text = ANY(post_wallpapers)`
	return r.mutateArray(ctx, query, clerkID, wallpaperID)
}

// mutateArray runs a guarded array update. Zero affected rows means either
// the user is missing or the array already had the desired shape.
func (r *PGRepo) mutateArray(ctx context.Context, query, clerkID, wallpaperID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, clerkID, wallpaperID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	var one int
	err = r.DB.QueryRowContext(ctx, `SELECT 1 FROM users WHERE clerk_id = $1`, clerkID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

func scanUser(row rowScanner) (User, error) {
	var user User
	var username sql.NullString
	err := row.Scan(
		&user.ClerkID,
		&user.Email,
		&username,
		&user.FullName,
		&user.ImageURL,
		pq.Array(&user.LikedWallpapers),
		pq.Array(&user.PostWallpapers),
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	if username.Valid {
		user.Username = username.String
	}
	return user.withDefaults(), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
