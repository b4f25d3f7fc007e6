package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"gameblog/internal/dbx"
	"gameblog/internal/domain"
	"gameblog/internal/repository"
)

const selectArticles = `
SELECT id, title, author, content, created_at
FROM games`

type ArticleRepository struct {
	db dbx.DBTX
}

func NewArticleRepository(db dbx.DBTX) repository.ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *domain.Article) (int64, error) {
	article.CreatedAt = time.Now().UTC()

	var id int64
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`
INSERT INTO games (title, author, content, created_at)
VALUES (?, ?, ?, ?)
RETURNING id`),
		article.Title,
		article.Author,
		article.Content,
		article.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert article: %w", err)
	}

	article.ID = id
	return id, nil
}

func (r *ArticleRepository) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	var article domain.Article
	err := sqlx.GetContext(ctx, r.db, &article, r.db.Rebind(selectArticles+`
WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("article %d: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("select article: %w", err)
	}
	return &article, nil
}

func (r *ArticleRepository) List(ctx context.Context) ([]domain.Article, error) {
	return r.list(ctx, selectArticles+`
ORDER BY id`)
}

func (r *ArticleRepository) ListByAuthor(ctx context.Context, author string) ([]domain.Article, error) {
	return r.list(ctx, selectArticles+`
WHERE author = ?
ORDER BY id`, author)
}

// ListByTitle matches keyword anywhere in the title, ignoring case as far as
// the database's LOWER folds it. Both sides are folded in SQL so they agree.
// The keyword is always bound as a parameter; LIKE wildcards in it match literally.
func (r *ArticleRepository) ListByTitle(ctx context.Context, keyword string) ([]domain.Article, error) {
	pattern := "%" + escapeLike(keyword) + "%"
	return r.list(ctx, selectArticles+`
WHERE LOWER(title) LIKE LOWER(?) ESCAPE '\'
ORDER BY id`, pattern)
}

func (r *ArticleRepository) Update(ctx context.Context, id int64, title, content string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
UPDATE games
SET title = ?, content = ?
WHERE id = ?`),
		title,
		content,
		id,
	)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return expectAffected(res, id)
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM games WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return expectAffected(res, id)
}

func (r *ArticleRepository) list(ctx context.Context, query string, args ...any) ([]domain.Article, error) {
	articles := []domain.Article{}
	if err := sqlx.SelectContext(ctx, r.db, &articles, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

func expectAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("article %d: %w", id, repository.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
