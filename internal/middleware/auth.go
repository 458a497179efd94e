package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PaulBabatuyi/chater/internal/apperr"
	"github.com/PaulBabatuyi/chater/internal/data"
)

// TokenCookie is the cookie that mirrors the bearer token for browsers.
const TokenCookie = "hash"

const userKey = "chater.user"

// Authorizer resolves a bearer token to a stored user.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*data.User, error)
}

// BearerToken extracts the token from the Authorization header, falling back
// to the token cookie.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireAuth aborts with 401 unless the request carries a token for an
// existing user. The user is stored on the context for handlers.
func RequireAuth(a Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.Authorize(c.Request.Context(), BearerToken(c))
		if err != nil {
			status := http.StatusUnauthorized
			if !apperr.Is(err, apperr.KindUnauthenticated) {
				status = http.StatusInternalServerError
			}
			c.AbortWithStatusJSON(status, gin.H{"error": apperr.Message(err)})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user set by RequireAuth.
func CurrentUser(c *gin.Context) *data.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*data.User)
	return u
}
