package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
)

const (
	contactThanks = "Thank you for reaching out. We will get back to you soon."
	contactFailed = "Sorry, your message could not be sent. Please try again later."
)

// ContactController accepts contact form messages.
type ContactController struct {
	svc   *services.ContactService
	pages *PageController
}

func NewContactController(svc *services.ContactService, pages *PageController) *ContactController {
	return &ContactController{svc: svc, pages: pages}
}

// Submit handles POST /api/contact with a JSON or form body.
func (c *ContactController) Submit(ctx *gin.Context) {
	var in services.ContactInput
	if err := ctx.ShouldBind(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}
	if !captchaPassed(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40060, captchaFailed)
		return
	}

	row, err := c.svc.Submit(ctx.Request.Context(), in)
	if err != nil {
		var fe *services.FieldError
		if errors.As(err, &fe) {
			code := 40002
			if errors.Is(err, services.ErrInvalidEmail) {
				code = 40003
			}
			utils.ErrorWithData(ctx, http.StatusBadRequest, code, fe.Error(), gin.H{"fields": fe.Fields})
			return
		}
		utils.Sugar.Errorw("contact submission failed", "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to submit message")
		return
	}
	utils.Created(ctx, row)
}

// SubmitForm handles the HTML form and re-renders the contact page with a notice.
func (c *ContactController) SubmitForm(ctx *gin.Context) {
	var in services.ContactInput
	_ = ctx.ShouldBind(&in)
	if !captchaPassed(ctx) {
		c.pages.render(ctx, http.StatusBadRequest, "contact.tmpl", "contact",
			withNotice(gin.H{"Form": in}, noticeError, captchaFailed))
		return
	}

	_, err := c.svc.Submit(ctx.Request.Context(), in)
	switch {
	case err == nil:
		c.pages.render(ctx, http.StatusOK, "contact.tmpl", "contact",
			withNotice(gin.H{"Form": services.ContactInput{}}, noticeSuccess, contactThanks))
	case errors.Is(err, services.ErrMissingField):
		c.pages.render(ctx, http.StatusBadRequest, "contact.tmpl", "contact",
			withNotice(gin.H{"Form": in}, noticeError, "Please fill in every field."))
	case errors.Is(err, services.ErrInvalidEmail):
		c.pages.render(ctx, http.StatusBadRequest, "contact.tmpl", "contact",
			withNotice(gin.H{"Form": in}, noticeError, "Please enter a valid email address."))
	default:
		utils.Sugar.Errorw("contact submission failed", "error", err)
		c.pages.render(ctx, http.StatusInternalServerError, "contact.tmpl", "contact",
			withNotice(gin.H{"Form": in}, noticeError, contactFailed))
	}
}
