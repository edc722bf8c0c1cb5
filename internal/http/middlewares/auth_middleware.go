package middlewares

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/drivingschool/internal/actorctx"
	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/auth"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/http/envelope"
	"github.com/gin-gonic/gin"
)

const AccessTokenCookie = "accessToken"

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt        TokenVerifier
	users      UserLoader
	ownerEmail string
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader, ownerEmail string) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users, ownerEmail: ownerEmail}
}

// RequireAuth accepts the access token from the accessToken cookie or a
// Bearer header, then loads the user it names. A token for a deleted user is
// rejected.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := accessTokenFrom(c)
		if raw == "" {
			envelope.Abort(c, apperr.Unauthorized("unauthorized", "Unauthorized request"))
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			envelope.Abort(c, apperr.Unauthorized("unauthorized", "Invalid or expired access token"))
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				envelope.Abort(c, apperr.Unauthorized("unauthorized", "Invalid access token"))
				return
			}
			envelope.Abort(c, apperr.Internal("Something went wrong", err))
			return
		}

		// Stash the identity on both the gin and the request context
		c.Set(ctxUserIDKey, u.ID)
		c.Request = c.Request.WithContext(actorctx.WithUser(c.Request.Context(), u))

		c.Next()
	}
}

func accessTokenFrom(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	return actorctx.UserFrom(c.Request.Context())
}
