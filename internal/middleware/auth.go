package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// SignInPath is where unauthenticated visitors of gated routes are sent
const SignInPath = "/auth/signin"

// AuthRequired middleware checks if user is authenticated
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSession(c)

		if session == nil {
			// Send them to sign in and bring them back afterwards
			c.Redirect(http.StatusFound, SignInPath+"?callbackUrl="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}

		// User is authenticated, continue
		c.Next()
	}
}
