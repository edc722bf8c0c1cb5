package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps JSON and form bodies. Multipart uploads get the larger
// uploadMax, since they carry avatars and videos.
func MaxBodyBytes(max, uploadMax int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		limit := max
		if strings.HasPrefix(strings.ToLower(ctx.GetHeader("Content-Type")), "multipart/") {
			limit = uploadMax
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, limit)

		ctx.Next()
	}
}
