package http

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gameblog/internal/forms"
	"gameblog/internal/service"
	"gameblog/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler wires HTTP routes to domain services. It is the application
// context shared by every request; nothing here is mutated after startup.
type Handler struct {
	users    service.UserService
	articles service.ArticleService
	sessions *session.Manager
	db       Pinger
	log      *logrus.Logger
	metrics  *metrics
}

func NewHandler(users service.UserService, articles service.ArticleService, sessions *session.Manager, db Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:    users,
		articles: articles,
		sessions: sessions,
		db:       db,
		log:      logger,
		metrics:  newMetrics(),
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.Use(requestID(), h.requestLogger(), h.metrics.middleware(), h.sessions.Middleware())

	router.GET("/", h.index)
	router.GET("/about", h.about)
	router.GET("/articles", h.listArticles)
	router.GET("/article/:id", h.articleDetail)

	router.GET("/register", h.registerForm)
	router.POST("/register", h.register)
	router.GET("/login", h.loginForm)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)

	router.GET("/search", h.searchRedirect)
	router.POST("/search", h.search)

	loggedIn := h.Guard(Authenticated)
	owner := h.Guard(h.ownsArticle)

	router.GET("/dashboard", loggedIn, h.dashboard)
	router.GET("/addarticle", loggedIn, h.addArticleForm)
	router.POST("/addarticle", loggedIn, h.addArticle)
	router.GET("/edit/:id", owner, h.editArticleForm)
	router.POST("/edit/:id", owner, h.editArticle)
	// GET is kept so existing delete links keep working; forms use POST
	router.GET("/delete/:id", owner, h.deleteArticle)
	router.POST("/delete/:id", owner, h.deleteArticle)

	router.GET("/metrics", h.metrics.handler())
	router.GET("/healthz", h.health)
}

func (h *Handler) index(c *gin.Context) {
	h.render(c, http.StatusOK, "index.html", nil)
}

func (h *Handler) about(c *gin.Context) {
	h.render(c, http.StatusOK, "about.html", nil)
}

func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			h.log.WithError(err).Warn("health check: database unreachable")
			c.String(http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}

// render attaches the session's pending flashes and login state to data,
// persists the drained session and writes the named template.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	s := session.FromContext(c)
	username, _ := s.CurrentUser()
	data["Flashes"] = s.Flashes()
	data["LoggedIn"] = s.IsAuthenticated()
	data["Username"] = username

	if err := h.sessions.Save(c, s); err != nil {
		h.log.WithError(err).Error("save session")
	}
	c.HTML(status, name, data)
}

// redirect persists the session (and any flash just added) and issues a 302.
func (h *Handler) redirect(c *gin.Context, location string) {
	if err := h.sessions.Save(c, session.FromContext(c)); err != nil {
		h.log.WithError(err).Error("save session")
	}
	c.Redirect(http.StatusFound, location)
}

func (h *Handler) flashRedirect(c *gin.Context, category, message, location string) {
	session.FromContext(c).AddFlash(category, message)
	h.redirect(c, location)
}

// internalError logs err and sends the client a generic notice.
func (h *Handler) internalError(c *gin.Context, err error, msg string) {
	h.log.WithError(err).WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"request_id": c.GetString(requestIDKey),
	}).Error(msg)
	h.flashRedirect(c, session.FlashDanger, "Something went wrong, please try again.", "/")
}

func formData(form any, errs forms.Errors) gin.H {
	if errs == nil {
		errs = forms.Errors{}
	}
	return gin.H{"Form": form, "Errors": errs}
}
