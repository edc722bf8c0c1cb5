package middlewares

import (
	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/domain/user"
	"github.com/geocoder89/drivingschool/internal/http/envelope"
	"github.com/gin-gonic/gin"
)

// RequireOwner lets only the academy owner through. Must run after RequireAuth.
func (m *AuthMiddleware) RequireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			envelope.Abort(c, apperr.Unauthorized("unauthorized", "Missing identity context"))
			return
		}

		if !u.IsOwner(m.ownerEmail) {
			envelope.Abort(c, apperr.Forbidden("forbidden", "Owner access required"))
			return
		}
		c.Next()
	}
}

// RequireSelfOrStaff lets through the user named by the path parameter, any
// instructor, and the owner.
func (m *AuthMiddleware) RequireSelfOrStaff(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c)
		if !ok {
			envelope.Abort(c, apperr.Unauthorized("unauthorized", "Missing identity context"))
			return
		}

		if u.ID == c.Param(param) || u.Role == user.RoleInstructor || u.IsOwner(m.ownerEmail) {
			c.Next()
			return
		}

		envelope.Abort(c, apperr.Forbidden("forbidden", "You can only access your own logsheets"))
	}
}
