package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"

	"github.com/alimgiray/peoplebase/internal/middleware"
	"github.com/alimgiray/peoplebase/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	stateCookie    = "oauth_state"
	callbackCookie = "oauth_callback"
	// the OAuth round trip has ten minutes to complete
	oauthCookieMaxAge = 600
)

var signInErrors = map[string]string{
	"oauth_disabled":          "GitHub sign-in is not configured",
	"invalid_state":           "Sign-in expired or was tampered with, please try again",
	"no_code":                 "GitHub did not return an authorization code",
	"token_exchange_failed":   "Could not complete sign-in with GitHub",
	"user_info_failed":        "Could not read your GitHub profile",
	"session_creation_failed": "Could not start your session",
	"access_denied":           "Sign-in was cancelled",
}

type AuthHandler struct {
	githubService *services.GitHubService
	sessions      *middleware.SessionManager
	secure        bool
	log           logrus.FieldLogger
}

func NewAuthHandler(githubService *services.GitHubService, sessions *middleware.SessionManager, secureCookies bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		githubService: githubService,
		sessions:      sessions,
		secure:        secureCookies,
		log:           log,
	}
}

// SignIn handles the sign-in page
func (h *AuthHandler) SignIn(c *gin.Context) {
	callback := safeCallback(c.Query("callbackUrl"))

	if middleware.GetSession(c) != nil {
		c.Redirect(http.StatusFound, callback)
		return
	}

	data := page(c, "Sign in")
	data["CallbackURL"] = callback
	data["OAuthEnabled"] = h.githubService.Enabled()
	if msg, ok := signInErrors[c.Query("error")]; ok {
		data["Error"] = msg
	}

	c.HTML(http.StatusOK, "signin", data)
}

// SignOut handles user logout
func (h *AuthHandler) SignOut(c *gin.Context) {
	h.sessions.ClearSession(c)
	c.Redirect(http.StatusFound, "/")
}

// GitHubLogin initiates GitHub OAuth flow
func (h *AuthHandler) GitHubLogin(c *gin.Context) {
	state, err := services.NewState()
	if err != nil {
		_ = c.Error(err)
		h.failSignIn(c, "session_creation_failed")
		return
	}

	authURL, err := h.githubService.GetAuthURL(state)
	if errors.Is(err, services.ErrOAuthDisabled) {
		h.failSignIn(c, "oauth_disabled")
		return
	}
	if err != nil {
		_ = c.Error(err)
		h.failSignIn(c, "session_creation_failed")
		return
	}

	h.setFlowCookie(c, stateCookie, state, oauthCookieMaxAge)
	h.setFlowCookie(c, callbackCookie, url.QueryEscape(safeCallback(c.Query("callbackUrl"))), oauthCookieMaxAge)

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

// GitHubCallback handles GitHub OAuth callback
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	expected, _ := c.Cookie(stateCookie)
	// gin unescapes cookie values on read
	callback, _ := c.Cookie(callbackCookie)
	h.setFlowCookie(c, stateCookie, "", -1)
	h.setFlowCookie(c, callbackCookie, "", -1)

	if errCode := c.Query("error"); errCode != "" {
		h.failSignIn(c, errCode)
		return
	}

	state := c.Query("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expected)) != 1 {
		h.log.WithField("client_ip", c.ClientIP()).Warn("oauth state mismatch")
		h.failSignIn(c, "invalid_state")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.failSignIn(c, "no_code")
		return
	}

	// Exchange code for token
	token, err := h.githubService.ExchangeCodeForToken(c.Request.Context(), code)
	if err != nil {
		h.log.WithError(err).Warn("github token exchange failed")
		h.failSignIn(c, "token_exchange_failed")
		return
	}

	// Get user info from GitHub
	user, err := h.githubService.GetUserInfo(c.Request.Context(), token)
	if err != nil {
		h.log.WithError(err).Warn("github user lookup failed")
		h.failSignIn(c, "user_info_failed")
		return
	}

	if err := h.sessions.SetSession(c, user); err != nil {
		_ = c.Error(err)
		h.failSignIn(c, "session_creation_failed")
		return
	}

	h.log.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("user signed in")
	c.Redirect(http.StatusFound, safeCallback(callback))
}

func (h *AuthHandler) failSignIn(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, middleware.SignInPath+"?error="+url.QueryEscape(code))
}

func (h *AuthHandler) setFlowCookie(c *gin.Context, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   maxAge,
		Secure:   h.secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
