package http

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"gameblog/internal/domain"
	"gameblog/internal/service"
	"gameblog/internal/session"
)

const articleKey = "article"

var errInvalidArticleID = errors.New("invalid article id")

// Predicate decides whether the request may reach the wrapped handler.
type Predicate func(c *gin.Context, s *session.Session) error

// Authenticated admits any logged-in session.
func Authenticated(_ *gin.Context, s *session.Session) error {
	_, err := s.CurrentUser()
	return err
}

// Guard wraps a route with pred. On refusal the request is aborted with a
// flashed notice and a redirect; the wrapped handler never runs.
func (h *Handler) Guard(pred Predicate) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := pred(c, session.FromContext(c))
		if err == nil {
			c.Next()
			return
		}

		c.Abort()
		h.refuse(c, err)
	}
}

// ownsArticle admits the author of the article named by :id and stashes it
// in the context for the handler.
func (h *Handler) ownsArticle(c *gin.Context, s *session.Session) error {
	username, err := s.CurrentUser()
	if err != nil {
		return err
	}
	id, err := articleID(c)
	if err != nil {
		return err
	}
	article, err := h.articles.GetOwned(c.Request.Context(), id, username)
	if err != nil {
		return err
	}
	c.Set(articleKey, article)
	return nil
}

// refuse maps an authorization or lookup failure to the user-visible outcome.
func (h *Handler) refuse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		h.flashRedirect(c, session.FlashDanger, "You need to login first", "/login")
	case errors.Is(err, service.ErrArticleNotFound), errors.Is(err, errInvalidArticleID):
		h.flashRedirect(c, session.FlashDanger, "There is no article with this id", "/")
	case errors.Is(err, service.ErrNotArticleOwner):
		h.flashRedirect(c, session.FlashDanger, "You are not authorized for this action", "/")
	default:
		h.internalError(c, err, "authorize request")
	}
}

func articleID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidArticleID
	}
	return id, nil
}

func guardedArticle(c *gin.Context) *domain.Article {
	v, _ := c.Get(articleKey)
	article, _ := v.(*domain.Article)
	return article
}
