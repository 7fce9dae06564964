package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
)

// ScholarshipController receives scholarship applications.
type ScholarshipController struct {
	svc   *services.ScholarshipService
	pages *PageController
}

func NewScholarshipController(svc *services.ScholarshipService, pages *PageController) *ScholarshipController {
	return &ScholarshipController{svc: svc, pages: pages}
}

// Submit handles POST /api/scholarships/:variant.
func (s *ScholarshipController) Submit(ctx *gin.Context) {
	variant := ctx.Param("variant")
	v, err := services.LookupVariant(variant)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
		return
	}
	if !captchaPassed(ctx) {
		utils.Error(ctx, http.StatusBadRequest, 40060, captchaFailed)
		return
	}

	rec, err := s.svc.Submit(ctx.Request.Context(), v.Name, applicationFromRequest(ctx, v))
	if err != nil {
		status, code := submissionStatus(err)
		var fe *services.FieldError
		if errors.As(err, &fe) {
			utils.ErrorWithData(ctx, status, code, fe.Error(), gin.H{"fields": fe.Fields})
			return
		}
		if status == http.StatusInternalServerError {
			utils.Sugar.Errorw("scholarship submission failed", "variant", v.Name, "error", err)
			utils.Error(ctx, status, code, "failed to submit application")
			return
		}
		utils.Error(ctx, status, code, err.Error())
		return
	}
	utils.Created(ctx, rec)
}

// SubmitForm handles the HTML application forms on the scholarships page.
func (s *ScholarshipController) SubmitForm(ctx *gin.Context) {
	v, err := services.LookupVariant(ctx.Param("variant"))
	if err != nil {
		s.pages.NotFound(ctx)
		return
	}
	extra := gin.H{"Variants": services.Variants()}
	if !captchaPassed(ctx) {
		s.pages.render(ctx, http.StatusBadRequest, "scholarships.tmpl", "scholarships", withNotice(extra, noticeError, captchaFailed))
		return
	}

	_, err = s.svc.Submit(ctx.Request.Context(), v.Name, applicationFromRequest(ctx, v))
	if err == nil {
		s.pages.render(ctx, http.StatusOK, "scholarships.tmpl", "scholarships",
			withNotice(extra, noticeSuccess, "Your application for the "+v.DisplayName+" has been received."))
		return
	}

	status, _ := submissionStatus(err)
	msg := "Sorry, your application could not be submitted. Please try again later."
	var fe *services.FieldError
	if errors.As(err, &fe) {
		msg = formMessage(v, fe)
	} else {
		utils.Sugar.Errorw("scholarship submission failed", "variant", v.Name, "error", err)
	}
	s.pages.render(ctx, status, "scholarships.tmpl", "scholarships", withNotice(extra, noticeError, msg))
}

func applicationFromRequest(ctx *gin.Context, v *services.Variant) services.ApplicationInput {
	in := services.ApplicationInput{
		FullName: ctx.PostForm("full_name"),
		Files:    make(map[string]*services.UploadFile, len(v.Slots)),
	}
	for _, slot := range v.Slots {
		fh, err := ctx.FormFile(slot.Field)
		if err != nil {
			continue
		}
		in.Files[slot.Field] = uploadFile(fh)
	}
	return in
}

func uploadFile(fh *multipart.FileHeader) *services.UploadFile {
	return &services.UploadFile{
		Filename: fh.Filename,
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func submissionStatus(err error) (int, int) {
	switch {
	case errors.Is(err, services.ErrUnknownVariant):
		return http.StatusNotFound, 40401
	case errors.Is(err, services.ErrMissingField), errors.Is(err, services.ErrMissingFile):
		return http.StatusBadRequest, 40010
	case errors.Is(err, services.ErrFileType):
		return http.StatusBadRequest, 40011
	case errors.Is(err, services.ErrFileTooLarge):
		return http.StatusBadRequest, 40012
	case errors.Is(err, services.ErrUploadFailed):
		return http.StatusBadGateway, 50201
	default:
		return http.StatusInternalServerError, 50010
	}
}

// formMessage names the offending inputs by their on-page labels.
func formMessage(v *services.Variant, fe *services.FieldError) string {
	labels := make([]string, 0, len(fe.Fields))
	for _, f := range fe.Fields {
		label := f
		if f == "full_name" {
			label = "Full Name"
		}
		for _, slot := range v.Slots {
			if slot.Field == f {
				label = slot.Label
			}
		}
		labels = append(labels, label)
	}
	switch {
	case errors.Is(fe, services.ErrFileType):
		return "Only PDF or Word documents are accepted: " + strings.Join(labels, ", ") + "."
	case errors.Is(fe, services.ErrFileTooLarge):
		return "These files are too large: " + strings.Join(labels, ", ") + "."
	default:
		return "Please provide: " + strings.Join(labels, ", ") + "."
	}
}
