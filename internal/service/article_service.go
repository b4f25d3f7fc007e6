package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"gameblog/internal/dbx"
	"gameblog/internal/domain"
	"gameblog/internal/repository"
)

var (
	// ErrArticleNotFound is returned when no article has the requested id.
	ErrArticleNotFound = errors.New("article not found")
	// ErrNotArticleOwner is returned when a user mutates someone else's article.
	ErrNotArticleOwner = errors.New("not the article author")
)

// ArticleRepositoryFactory binds an article repository to a connection or transaction.
type ArticleRepositoryFactory func(db dbx.DBTX) repository.ArticleRepository

// ArticleService coordinates article operations backed by repositories.
type ArticleService interface {
	Create(ctx context.Context, title, content, author string) (*domain.Article, error)
	Get(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	ListByAuthor(ctx context.Context, author string) ([]domain.Article, error)
	Search(ctx context.Context, keyword string) ([]domain.Article, error)
	GetOwned(ctx context.Context, id int64, username string) (*domain.Article, error)
	UpdateOwned(ctx context.Context, id int64, username, title, content string) error
	DeleteOwned(ctx context.Context, id int64, username string) error
}

type articleService struct {
	db       *sqlx.DB
	articles repository.ArticleRepository
	repoFor  ArticleRepositoryFactory
}

func NewArticleService(db *sqlx.DB, repoFor ArticleRepositoryFactory) ArticleService {
	return &articleService{
		db:       db,
		articles: repoFor(db),
		repoFor:  repoFor,
	}
}

func (s *articleService) Create(ctx context.Context, title, content, author string) (*domain.Article, error) {
	if author == "" {
		return nil, errors.New("author is required")
	}

	article := &domain.Article{
		Title:   title,
		Content: content,
		Author:  author,
	}
	if _, err := s.articles.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *articleService) Get(ctx context.Context, id int64) (*domain.Article, error) {
	article, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return article, nil
}

func (s *articleService) List(ctx context.Context) ([]domain.Article, error) {
	return s.articles.List(ctx)
}

func (s *articleService) ListByAuthor(ctx context.Context, author string) ([]domain.Article, error) {
	return s.articles.ListByAuthor(ctx, author)
}

func (s *articleService) Search(ctx context.Context, keyword string) ([]domain.Article, error) {
	return s.articles.ListByTitle(ctx, strings.TrimSpace(keyword))
}

func (s *articleService) GetOwned(ctx context.Context, id int64, username string) (*domain.Article, error) {
	return getOwned(ctx, s.articles, id, username)
}

// UpdateOwned checks ownership and updates within one transaction.
func (s *articleService) UpdateOwned(ctx context.Context, id int64, username, title, content string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repoFor(tx)
		if _, err := getOwned(ctx, repo, id, username); err != nil {
			return err
		}
		if err := repo.Update(ctx, id, title, content); err != nil {
			return translateNotFound(err)
		}
		return nil
	})
}

// DeleteOwned checks ownership and deletes within one transaction.
func (s *articleService) DeleteOwned(ctx context.Context, id int64, username string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repoFor(tx)
		if _, err := getOwned(ctx, repo, id, username); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return translateNotFound(err)
		}
		return nil
	})
}

func getOwned(ctx context.Context, repo repository.ArticleRepository, id int64, username string) (*domain.Article, error) {
	article, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if !article.OwnedBy(username) {
		return nil, fmt.Errorf("article %d by %q: %w", id, username, ErrNotArticleOwner)
	}
	return article, nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrArticleNotFound
	}
	return err
}
