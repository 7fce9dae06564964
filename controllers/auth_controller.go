package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
	"github.com/dpefoundation/website/web"
)

// AuthController handles admin login and logout.
type AuthController struct {
	auth  *services.AdminAuth
	pages *PageController
}

func NewAuthController(auth *services.AdminAuth, pages *PageController) *AuthController {
	return &AuthController{auth: auth, pages: pages}
}

type loginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// Login checks the shared admin credential and sets the session cookie.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid request payload")
		return
	}

	expiresAt, err := a.login(ctx, req)
	switch {
	case errors.Is(err, services.ErrAuthNotConfigured):
		utils.Error(ctx, http.StatusInternalServerError, 50030, "admin login is not configured")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid username or password")
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to create session")
	default:
		utils.Success(ctx, gin.H{"username": req.Username, "expires_at": expiresAt})
	}
}

// Logout revokes the current session until it expires and clears the cookie.
func (a *AuthController) Logout(ctx *gin.Context) {
	a.logout(ctx)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// LoginPage renders the login form.
func (a *AuthController) LoginPage(ctx *gin.Context) {
	a.pages.render(ctx, http.StatusOK, "admin_login.tmpl", "", gin.H{"Page": web.Page{Title: "Admin login"}})
}

// LoginForm handles the login form and redirects to the dashboard on success.
func (a *AuthController) LoginForm(ctx *gin.Context) {
	var req loginRequest
	_ = ctx.ShouldBind(&req)

	_, err := a.login(ctx, req)
	if err == nil {
		ctx.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	status, msg := http.StatusInternalServerError, "Login is unavailable. Please try again later."
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "Invalid username or password."
	case errors.Is(err, services.ErrAuthNotConfigured):
		msg = "Admin login is not configured."
	}
	a.pages.render(ctx, status, "admin_login.tmpl", "",
		withNotice(gin.H{"Page": web.Page{Title: "Admin login"}}, noticeError, msg))
}

// LogoutForm handles the dashboard's logout button.
func (a *AuthController) LogoutForm(ctx *gin.Context) {
	a.logout(ctx)
	ctx.Redirect(http.StatusSeeOther, "/admin/login")
}

func (a *AuthController) login(ctx *gin.Context, req loginRequest) (time.Time, error) {
	if err := a.auth.Verify(req.Username, req.Password); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.AdminLogins.WithLabelValues(utils.OutcomeInvalid).Inc()
			utils.Sugar.Warnw("admin login rejected", "ip", ctx.ClientIP())
		} else {
			utils.AdminLogins.WithLabelValues(utils.OutcomeFailed).Inc()
		}
		return time.Time{}, err
	}

	cfg := config.Get()
	token, expiresAt, err := utils.IssueSession(req.Username, cfg.SessionTTL)
	if err != nil {
		utils.AdminLogins.WithLabelValues(utils.OutcomeFailed).Inc()
		utils.Sugar.Errorw("issue session failed", "error", err)
		return time.Time{}, err
	}
	setSessionCookie(ctx, token, int(cfg.SessionTTL/time.Second))
	utils.AdminLogins.WithLabelValues(utils.OutcomeOK).Inc()
	return expiresAt, nil
}

func (a *AuthController) logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(utils.SessionCookie); err == nil && token != "" {
		if claims, err := utils.ParseSession(token); err == nil && claims.ExpiresAt != nil {
			utils.RevokeSession(token, claims.ExpiresAt.Time)
		}
	}
	setSessionCookie(ctx, "", -1)
}

func setSessionCookie(ctx *gin.Context, value string, maxAge int) {
	cfg := config.Get()
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(utils.SessionCookie, value, maxAge, "/", "", cfg.CookieSecure || cfg.IsRelease(), true)
}
