// Package session keeps per-client login state and flashed notices in a
// signed cookie. Nothing is stored server-side; the HS256 signature makes
// the cookie tamper-evident and its expiry bounds the login lifetime.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNotAuthenticated is returned when the session carries no logged-in user.
var ErrNotAuthenticated = errors.New("not authenticated")

const contextKey = "session"

// Flash categories understood by the templates.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
)

// Flash is a read-once notice shown after a redirect.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Session is the decoded state of one client's cookie.
type Session struct {
	loggedIn bool
	username string
	flashes  []Flash
}

// Start marks the session as logged in as username.
func (s *Session) Start(username string) {
	s.loggedIn = true
	s.username = username
}

func (s *Session) IsAuthenticated() bool {
	return s != nil && s.loggedIn
}

// CurrentUser returns the logged-in username.
func (s *Session) CurrentUser() (string, error) {
	if !s.IsAuthenticated() {
		return "", ErrNotAuthenticated
	}
	return s.username, nil
}

// End clears all session state, pending flashes included.
func (s *Session) End() {
	s.loggedIn = false
	s.username = ""
	s.flashes = nil
}

func (s *Session) AddFlash(category, message string) {
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
}

// Flashes returns and clears the pending notices.
func (s *Session) Flashes() []Flash {
	out := s.flashes
	s.flashes = nil
	return out
}

func (s *Session) empty() bool {
	return !s.loggedIn && len(s.flashes) == 0
}

type claims struct {
	jwt.RegisteredClaims
	LoggedIn bool    `json:"logged_in,omitempty"`
	Username string  `json:"username,omitempty"`
	Flashes  []Flash `json:"flashes,omitempty"`
}

// Options configures the session cookie.
type Options struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
	Logger     *logrus.Logger
}

// Manager encodes sessions into signed cookies and back.
type Manager struct {
	opts Options
	now  func() time.Time
}

func NewManager(opts Options) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "blog_session"
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &Manager{opts: opts, now: time.Now}
}

// Middleware decodes the cookie, if any, and attaches the session to the context.
// A missing, expired, or forged cookie yields an empty session.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s := &Session{}
		if raw, err := c.Cookie(m.opts.CookieName); err == nil && raw != "" {
			decoded, err := m.Decode(raw)
			if err != nil {
				m.opts.Logger.WithError(err).Debug("discarding session cookie")
			} else {
				s = decoded
			}
		}
		c.Set(contextKey, s)
		c.Next()
	}
}

// FromContext returns the session attached by Middleware, or a fresh one.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	s := &Session{}
	c.Set(contextKey, s)
	return s
}

// Save writes the session back to the client. It must run before the
// response body is written.
func (m *Manager) Save(c *gin.Context, s *Session) error {
	c.SetSameSite(http.SameSiteLaxMode)
	if s.empty() {
		if _, err := c.Cookie(m.opts.CookieName); err != nil {
			return nil
		}
		c.SetCookie(m.opts.CookieName, "", -1, "/", "", m.opts.Secure, true)
		return nil
	}

	token, err := m.Encode(s)
	if err != nil {
		return err
	}
	c.SetCookie(m.opts.CookieName, token, int(m.opts.TTL.Seconds()), "/", "", m.opts.Secure, true)
	return nil
}

// Encode signs the session state.
func (m *Manager) Encode(s *Session) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.opts.TTL)),
		},
		LoggedIn: s.loggedIn,
		Username: s.username,
		Flashes:  s.flashes,
	})
	return token.SignedString(m.opts.Secret)
}

// Decode verifies the signature and expiry of raw and returns its state.
func (m *Manager) Decode(raw string) (*Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		return m.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	s := &Session{flashes: cl.Flashes}
	if cl.LoggedIn && cl.Username != "" {
		s.Start(cl.Username)
	}
	return s, nil
}
