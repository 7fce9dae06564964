package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/utils"
)

// BodyLimit rejects request bodies larger than maxBytes. A declared Content-Length over the
// limit fails before anything is read; otherwise reads stop at the limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if maxBytes <= 0 || ctx.Request.Body == nil {
			ctx.Next()
			return
		}
		if ctx.Request.ContentLength > maxBytes {
			utils.Error(ctx, http.StatusRequestEntityTooLarge, 41301, "request body too large")
			ctx.Abort()
			return
		}
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBytes)
		ctx.Next()
	}
}
