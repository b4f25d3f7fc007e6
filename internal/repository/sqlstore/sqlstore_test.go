package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameblog/internal/domain"
	"gameblog/internal/repository"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, Migrate(context.Background(), db))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM games`))
	assert.Zero(t, n)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "root@/blog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported database driver "mysql"`)
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupDB(t))

	u := &domain.User{Name: "Alice", Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	id, err := repo.Create(ctx, u)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, u.ID)

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(setupDB(t))

	_, err := repo.Create(ctx, &domain.User{Name: "Alice", Username: "alice", Email: "a@example.com", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Name: "Other", Username: "alice", Email: "b@example.com", PasswordHash: "h2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrDuplicateKey)
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(setupDB(t))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_CreateDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+users.*RETURNING\s+id`).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &domain.User{Username: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert user: db down")
	assert.NotErrorIs(t, err, repository.ErrDuplicateKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(setupDB(t))

	id, err := repo.Create(ctx, &domain.Article{Title: "Chess", Content: "A strategy board game.", Author: "alice"})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Chess", got.Title)
	assert.Equal(t, "A strategy board game.", got.Content)
	assert.Equal(t, "alice", got.Author)
}

func TestArticleRepository_Lists(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(setupDB(t))

	seed := []domain.Article{
		{Title: "Chess", Content: "c", Author: "alice"},
		{Title: "Go", Content: "g", Author: "bob"},
		{Title: "Checkers", Content: "k", Author: "alice"},
	}
	for i := range seed {
		_, err := repo.Create(ctx, &seed[i])
		require.NoError(t, err)
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Chess", "Go", "Checkers"}, titles(all))

	mine, err := repo.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"Chess", "Checkers"}, titles(mine))

	none, err := repo.ListByAuthor(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArticleRepository_ListByTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(setupDB(t))

	for _, title := range []string{"Chess", "Checkers", "100% Orange", "Snake_Case", "Échecs Royaux"} {
		_, err := repo.Create(ctx, &domain.Article{Title: title, Content: "x", Author: "alice"})
		require.NoError(t, err)
	}

	tests := []struct {
		keyword string
		want    []string
	}{
		{keyword: "ches", want: []string{"Chess"}},
		{keyword: "CHE", want: []string{"Chess", "Checkers"}},
		{keyword: "%", want: []string{"100% Orange"}},
		{keyword: "_", want: []string{"Snake_Case"}},
		{keyword: "Échecs", want: []string{"Échecs Royaux"}},
		{keyword: "cs roy", want: []string{"Échecs Royaux"}},
		{keyword: "' OR '1'='1", want: []string{}},
		{keyword: "monopoly", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			got, err := repo.ListByTitle(ctx, tt.keyword)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestArticleRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewArticleRepository(setupDB(t))

	id, err := repo.Create(ctx, &domain.Article{Title: "Chess", Content: "old", Author: "alice"})
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, "Chess 2", "new"))
	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Chess 2", got.Title)
	assert.Equal(t, "new", got.Content)
	assert.Equal(t, "alice", got.Author)

	require.NoError(t, repo.Delete(ctx, id))
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, id), repository.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, id, "t", "c"), repository.ErrNotFound)
}

func TestArticleRepository_ListDBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	mock.ExpectQuery(`(?s)SELECT\s+id,\s*title,\s*author,\s*content,\s*created_at\s+FROM\s+games`).
		WillReturnError(errors.New("boom"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list articles: boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleRepository_ListByTitleBindsKeyword(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewArticleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "author", "content", "created_at"})
	mock.ExpectQuery(`(?s)WHERE\s+LOWER\(title\)\s+LIKE\s+LOWER\(\?\)`).
		WithArgs(`%X'; DROP TABLE games; --%`).
		WillReturnRows(rows)

	got, err := repo.ListByTitle(context.Background(), "X'; DROP TABLE games; --")
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func titles(articles []domain.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.Title)
	}
	return out
}
