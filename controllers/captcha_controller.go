package controllers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/config"
	"github.com/dpefoundation/website/utils"
)

const captchaFailed = "The verification code was incorrect or has expired."

type captchaView struct {
	ID    string
	Image template.URL
}

// newCaptcha returns nil when captchas are disabled or cannot be generated.
func newCaptcha() *captchaView {
	if !config.Get().CaptchaEnabled {
		return nil
	}
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Sugar.Warnf("generate captcha: %v", err)
		return nil
	}
	// the image is a data URI produced by the captcha library
	return &captchaView{ID: id, Image: template.URL(b64)}
}

// captchaPassed reads the answer from headers (JSON clients) or form fields.
func captchaPassed(ctx *gin.Context) bool {
	if !config.Get().CaptchaEnabled {
		return true
	}
	id, answer := ctx.GetHeader("X-Captcha-Id"), ctx.GetHeader("X-Captcha-Answer")
	if id == "" {
		id, answer = ctx.PostForm("captcha_id"), ctx.PostForm("captcha_answer")
	}
	return utils.VerifyCaptcha(id, answer)
}

// CaptchaController hands out captchas to API clients.
type CaptchaController struct{}

func NewCaptchaController() *CaptchaController { return &CaptchaController{} }

// Generate returns a new captcha, or enabled=false when none is required.
func (c *CaptchaController) Generate(ctx *gin.Context) {
	if !config.Get().CaptchaEnabled {
		utils.Success(ctx, gin.H{"enabled": false})
		return
	}
	id, b64, err := utils.GenerateCaptcha()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to generate captcha")
		return
	}
	utils.Success(ctx, gin.H{"enabled": true, "id": id, "image": b64})
}
