package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"clerk_id", "email", "username", "full_name", "image_url", "liked_wallpapers", "post_wallpapers", "created_at", "updated_at"}

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoUpsertReturnsStoredRow(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("user_1", "a@example.com", nil, "Ada", "").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user_1", "a@example.com", nil, "Ada", "", "{}", "{w1,w2}", now, now))

	user, err := repo.Upsert(context.Background(), User{ClerkID: "user_1", Email: "a@example.com", FullName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "", user.Username)
	assert.Equal(t, []string{}, user.LikedWallpapers)
	assert.Equal(t, []string{"w1", "w2"}, user.PostWallpapers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpsertMapsUniqueViolation(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Upsert(context.Background(), User{ClerkID: "user_2", Email: "a@example.com", Username: "a"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "users_email_key")
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE clerk_id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := repo.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoAppendPosted(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("user_1", "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	added, err := repo.AppendPosted(context.Background(), "user_1", "w1")
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoAppendPostedAlreadyPresent(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("user_1", "w1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs("user_1").
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

	added, err := repo.AppendPosted(context.Background(), "user_1", "w1")
	require.NoError(t, err)
	assert.False(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoRemovePostedUnknownUser(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("ghost", "w1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM users").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"one"}))

	_, err := repo.RemovePosted(context.Background(), "ghost", "w1")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGRepoList(t *testing.T) {
	repo, mock := newPGRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY clerk_id").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("a", "a@example.com", "alpha", "", "", "{}", "{w1}", now, now).
			AddRow("b", "b@example.com", nil, "", "", "{}", "{}", now, now))

	all, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alpha", all[0].Username)
	assert.Equal(t, []string{"w1"}, all[0].PostWallpapers)
}
