package repository

import (
	"context"

	"gameblog/internal/domain"
)

// ArticleRepository exposes persistence operations for articles.
// Update and Delete are unconditional; callers check ownership first.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	ListByAuthor(ctx context.Context, author string) ([]domain.Article, error)
	ListByTitle(ctx context.Context, keyword string) ([]domain.Article, error)
	Update(ctx context.Context, id int64, title, content string) error
	Delete(ctx context.Context, id int64) error
}
