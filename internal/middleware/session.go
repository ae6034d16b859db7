package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alimgiray/peoplebase/internal/models"
	"github.com/alimgiray/peoplebase/pkg/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie     = "session"
	sessionContextKey = "session"
	// set once a handler wrote or cleared the cookie itself
	sessionWrittenKey = "session_written"
)

type SessionData struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url"`
	ExpiresAt time.Time `json:"-"`
}

// DisplayName prefers the full name and falls back to the login
func (s *SessionData) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Username
}

type sessionClaims struct {
	Username  string `json:"username"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies the HS256-signed session cookie
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(cfg config.SessionConfig) *SessionManager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{
		secret: []byte(cfg.Secret),
		ttl:    ttl,
		secure: cfg.SecureCookies,
		now:    time.Now,
	}
}

// Encode signs session data into a cookie value
func (m *SessionManager) Encode(data SessionData) (string, error) {
	claims := sessionClaims{
		Username:  data.Username,
		Name:      data.Name,
		Email:     data.Email,
		AvatarURL: data.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   data.UserID,
			IssuedAt:  jwt.NewNumericDate(m.now()),
			ExpiresAt: jwt.NewNumericDate(data.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Decode verifies a cookie value and returns the session it carries
func (m *SessionManager) Decode(value string) (*SessionData, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if claims.Subject == "" {
		return nil, errors.New("session has no subject")
	}

	return &SessionData{
		UserID:    claims.Subject,
		Username:  claims.Username,
		Name:      claims.Name,
		Email:     claims.Email,
		AvatarURL: claims.AvatarURL,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Middleware loads the session from the cookie into the context and slides
// its expiry forward on every successful response
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionData := m.fromCookie(c)
		c.Set(sessionContextKey, sessionData)

		if sessionData != nil {
			c.Writer = &sessionRefreshWriter{
				ResponseWriter: c.Writer,
				refresh: func() {
					if c.GetBool(sessionWrittenKey) {
						return
					}
					m.writeCookie(c, *sessionData)
				},
			}
		}

		c.Next()
	}
}

// fromCookie extracts and validates session data from the cookie
func (m *SessionManager) fromCookie(c *gin.Context) *SessionData {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie == "" {
		return nil
	}

	sessionData, err := m.Decode(cookie)
	if err != nil {
		return nil
	}
	return sessionData
}

// SetSession creates a new session cookie for user
func (m *SessionManager) SetSession(c *gin.Context, user *models.User) error {
	data := SessionData{
		UserID:    user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.ProfilePicture,
	}
	if err := m.writeCookie(c, data); err != nil {
		return err
	}
	c.Set(sessionWrittenKey, true)
	c.Set(sessionContextKey, &data)
	return nil
}

func (m *SessionManager) writeCookie(c *gin.Context, data SessionData) error {
	data.ExpiresAt = m.now().Add(m.ttl)

	value, err := m.Encode(data)
	if err != nil {
		return err
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession removes the session cookie
func (m *SessionManager) ClearSession(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(sessionWrittenKey, true)
	c.Set(sessionContextKey, (*SessionData)(nil))
}

// GetSession retrieves session data from context
func GetSession(c *gin.Context) *SessionData {
	session, exists := c.Get(sessionContextKey)
	if !exists {
		return nil
	}

	if sessionData, ok := session.(*SessionData); ok {
		return sessionData
	}

	return nil
}

// sessionRefreshWriter re-issues the cookie right before the response
// headers go out, but only for non-error statuses
type sessionRefreshWriter struct {
	gin.ResponseWriter
	refresh func()
	done    bool
}

func (w *sessionRefreshWriter) beforeWrite() {
	if w.done {
		return
	}
	w.done = true
	if w.Status() < http.StatusBadRequest {
		w.refresh()
	}
}

func (w *sessionRefreshWriter) WriteHeaderNow() {
	w.beforeWrite()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionRefreshWriter) Write(data []byte) (int, error) {
	w.beforeWrite()
	return w.ResponseWriter.Write(data)
}

func (w *sessionRefreshWriter) WriteString(s string) (int, error) {
	w.beforeWrite()
	return w.ResponseWriter.WriteString(s)
}
