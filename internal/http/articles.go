package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gameblog/internal/domain"
	"gameblog/internal/forms"
	"gameblog/internal/service"
	"gameblog/internal/session"
)

func (h *Handler) listArticles(c *gin.Context) {
	articles, err := h.articles.List(c.Request.Context())
	if err != nil {
		h.internalError(c, err, "list articles")
		return
	}
	h.render(c, http.StatusOK, "articles.html", gin.H{"Articles": articles})
}

func (h *Handler) articleDetail(c *gin.Context) {
	id, err := articleID(c)
	if err != nil {
		h.render(c, http.StatusNotFound, "article.html", gin.H{"Article": (*domain.Article)(nil)})
		return
	}

	article, err := h.articles.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			h.render(c, http.StatusNotFound, "article.html", gin.H{"Article": (*domain.Article)(nil)})
			return
		}
		h.internalError(c, err, "get article")
		return
	}
	h.render(c, http.StatusOK, "article.html", gin.H{"Article": article})
}

func (h *Handler) dashboard(c *gin.Context) {
	username, _ := session.FromContext(c).CurrentUser()
	articles, err := h.articles.ListByAuthor(c.Request.Context(), username)
	if err != nil {
		h.internalError(c, err, "list own articles")
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", gin.H{"Articles": articles})
}

func (h *Handler) addArticleForm(c *gin.Context) {
	h.render(c, http.StatusOK, "addarticle.html", formData(forms.Article{}, nil))
}

func (h *Handler) addArticle(c *gin.Context) {
	var form forms.Article
	if errs := forms.Bind(c, &form); errs != nil {
		h.render(c, http.StatusUnprocessableEntity, "addarticle.html", formData(form, errs))
		return
	}

	username, _ := session.FromContext(c).CurrentUser()
	article, err := h.articles.Create(c.Request.Context(), form.Title, form.Content, username)
	if err != nil {
		h.internalError(c, err, "create article")
		return
	}

	h.log.WithFields(logrus.Fields{"article_id": article.ID, "author": username}).Info("article created")
	h.flashRedirect(c, session.FlashSuccess, "Article Added Successfully", "/dashboard")
}

func (h *Handler) editArticleForm(c *gin.Context) {
	article := guardedArticle(c)
	h.render(c, http.StatusOK, "update.html", gin.H{
		"Form":    forms.Article{Title: article.Title, Content: article.Content},
		"Errors":  forms.Errors{},
		"Article": article,
	})
}

func (h *Handler) editArticle(c *gin.Context) {
	article := guardedArticle(c)

	var form forms.Article
	if errs := forms.Bind(c, &form); errs != nil {
		h.render(c, http.StatusUnprocessableEntity, "update.html", gin.H{
			"Form":    form,
			"Errors":  errs,
			"Article": article,
		})
		return
	}

	username, _ := session.FromContext(c).CurrentUser()
	if err := h.articles.UpdateOwned(c.Request.Context(), article.ID, username, form.Title, form.Content); err != nil {
		h.mutationFailed(c, err, "update article")
		return
	}
	h.flashRedirect(c, session.FlashSuccess, "Article Updated", "/dashboard")
}

func (h *Handler) deleteArticle(c *gin.Context) {
	article := guardedArticle(c)
	username, _ := session.FromContext(c).CurrentUser()

	if err := h.articles.DeleteOwned(c.Request.Context(), article.ID, username); err != nil {
		h.mutationFailed(c, err, "delete article")
		return
	}

	h.log.WithFields(logrus.Fields{"article_id": article.ID, "author": username}).Info("article deleted")
	h.flashRedirect(c, session.FlashSuccess, "Article Deleted", "/dashboard")
}

// mutationFailed covers the window between the guard's check and the write.
func (h *Handler) mutationFailed(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrArticleNotFound) || errors.Is(err, service.ErrNotArticleOwner) {
		h.refuse(c, err)
		return
	}
	h.internalError(c, err, msg)
}

func (h *Handler) searchRedirect(c *gin.Context) {
	h.redirect(c, "/")
}

func (h *Handler) search(c *gin.Context) {
	keyword := strings.TrimSpace(c.PostForm("keyword"))

	articles, err := h.articles.Search(c.Request.Context(), keyword)
	if err != nil {
		h.internalError(c, err, "search articles")
		return
	}
	if len(articles) == 0 {
		h.flashRedirect(c, session.FlashWarning, "No Articles Found", "/articles")
		return
	}
	h.render(c, http.StatusOK, "articles.html", gin.H{"Articles": articles, "Keyword": keyword})
}
