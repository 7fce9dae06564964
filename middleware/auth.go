package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/utils"
)

const (
	// ContextAdminKey stores the authenticated admin username inside Gin context.
	ContextAdminKey = "admin_username"

	loginPagePath = "/admin/login"
)

// AdminRequired gates the dashboard behind the session cookie.
// Pages redirect to the login page, API calls answer 401. Paths outside the admin area pass through.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if !isAdminPath(path) || isPublicAdminPath(path) {
			ctx.Next()
			return
		}

		token, err := ctx.Cookie(utils.SessionCookie)
		if err != nil || token == "" {
			deny(ctx, 40101, "login required")
			return
		}
		if utils.IsSessionRevoked(token) {
			deny(ctx, 40102, "session revoked")
			return
		}
		claims, err := utils.ParseSession(token)
		if err != nil {
			deny(ctx, 40103, "session expired or invalid")
			return
		}

		ctx.Set(ContextAdminKey, claims.Username)
		ctx.Next()
	}
}

func isAdminPath(path string) bool {
	for _, prefix := range []string{"/admin", "/api/admin"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func isPublicAdminPath(path string) bool {
	switch strings.TrimRight(path, "/") {
	case loginPagePath, "/api/admin/login", "/api/admin/logout":
		return true
	}
	return false
}

func deny(ctx *gin.Context, code int, msg string) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		utils.Error(ctx, http.StatusUnauthorized, code, msg)
		ctx.Abort()
		return
	}
	ctx.Redirect(http.StatusFound, loginPagePath)
	ctx.Abort()
}
