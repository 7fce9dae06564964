package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/models"
	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
	"github.com/dpefoundation/website/web"
)

const contactsTab = "contacts"

// AdminController serves the submissions dashboard, both as JSON and as HTML.
type AdminController struct {
	dash  *services.DashboardService
	stats *services.StatsService
	pages *PageController
}

func NewAdminController(dash *services.DashboardService, stats *services.StatsService, pages *PageController) *AdminController {
	return &AdminController{dash: dash, stats: stats, pages: pages}
}

// Overview returns every table at once.
func (a *AdminController) Overview(ctx *gin.Context) {
	out, err := a.dash.Overview(ctx.Request.Context())
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, out)
}

// ListScholarships returns the sorted and filtered rows of one variant.
func (a *AdminController) ListScholarships(ctx *gin.Context) {
	var q services.ListQuery
	_ = ctx.ShouldBindQuery(&q)

	rows, err := a.dash.ListScholarships(ctx.Request.Context(), ctx.Param("variant"), q)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": rows, "query": q.Normalize(), "total": len(rows)})
}

// ListContacts returns the sorted and filtered contact messages.
func (a *AdminController) ListContacts(ctx *gin.Context) {
	var q services.ListQuery
	_ = ctx.ShouldBindQuery(&q)

	rows, err := a.dash.ListContacts(ctx.Request.Context(), q)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": rows, "query": q.Normalize(), "total": len(rows)})
}

// UpdateReview applies a partial update to one submission.
func (a *AdminController) UpdateReview(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	var upd services.ReviewUpdate
	if err := ctx.ShouldBindJSON(&upd); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	row, err := a.dash.UpdateReview(ctx.Request.Context(), ctx.Param("variant"), id, upd)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, row)
}

// SaveAll applies a batch of updates, one result per row.
func (a *AdminController) SaveAll(ctx *gin.Context) {
	var updates []services.ReviewUpdate
	if err := ctx.ShouldBindJSON(&updates); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	results, err := a.dash.SaveAll(ctx.Request.Context(), ctx.Param("variant"), updates)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"results": results})
}

// File resolves a stored document. With redirect=1 the browser is sent straight to it.
func (a *AdminController) File(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}
	u, err := a.dash.FileURL(ctx.Request.Context(), ctx.Param("variant"), id, ctx.Param("role"))
	if err != nil {
		a.fail(ctx, err)
		return
	}
	if redirect, _ := strconv.ParseBool(ctx.Query("redirect")); redirect {
		ctx.Redirect(http.StatusFound, u)
		return
	}
	utils.Success(ctx, gin.H{"url": u})
}

// ExportScholarships downloads the visible rows of one variant as CSV.
func (a *AdminController) ExportScholarships(ctx *gin.Context) {
	v, err := services.LookupVariant(ctx.Param("variant"))
	if err != nil {
		a.fail(ctx, err)
		return
	}
	var q services.ListQuery
	_ = ctx.ShouldBindQuery(&q)

	rows, err := a.dash.ListScholarships(ctx.Request.Context(), v.Name, q)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	attachCSV(ctx, services.ScholarshipCSVName(v))
	if err := services.WriteScholarshipCSV(ctx.Writer, v, rows, a.dash.Location()); err != nil {
		utils.Sugar.Errorw("csv export failed", "variant", v.Name, "error", err)
	}
}

// ExportContacts downloads the visible contact messages as CSV.
func (a *AdminController) ExportContacts(ctx *gin.Context) {
	var q services.ListQuery
	_ = ctx.ShouldBindQuery(&q)

	rows, err := a.dash.ListContacts(ctx.Request.Context(), q)
	if err != nil {
		a.fail(ctx, err)
		return
	}
	attachCSV(ctx, services.ContactCSVName)
	if err := services.WriteContactCSV(ctx.Writer, rows, a.dash.Location()); err != nil {
		utils.Sugar.Errorw("csv export failed", "table", contactsTab, "error", err)
	}
}

type column struct {
	Label  string
	URL    string
	Active bool
	Dir    string
}

// Dashboard renders GET /admin.
func (a *AdminController) Dashboard(ctx *gin.Context) {
	tab := strings.TrimSpace(ctx.Query("tab"))
	if tab == "" {
		tab = services.VariantNames()[0]
	}
	var q services.ListQuery
	_ = ctx.ShouldBindQuery(&q)
	q = q.Normalize()

	data := gin.H{
		"Page":      web.Page{Title: "Admin dashboard"},
		"Stats":     a.stats.Collect(ctx.Request.Context()),
		"Variants":  services.Variants(),
		"Tab":       tab,
		"Query":     q,
		"Statuses":  models.Statuses,
		"Loc":       a.dash.Location(),
		"ReturnURL": ctx.Request.URL.RequestURI(),
		"Variant":   (*services.Variant)(nil),
	}
	if ctx.Query("saved") != "" {
		withNotice(data, noticeSuccess, "Changes saved.")
	} else if msg := ctx.Query("error"); msg != "" {
		withNotice(data, noticeError, msg)
	}

	listQuery := url.Values{}
	listQuery.Set("sort", q.Sort)
	listQuery.Set("dir", q.Dir)
	if q.Q != "" {
		listQuery.Set("q", q.Q)
	}

	var fields [][2]string
	if tab == contactsTab {
		rows, err := a.dash.ListContacts(ctx.Request.Context(), q)
		if err != nil {
			a.dashboardError(ctx, err)
			return
		}
		data["Contacts"] = rows
		data["ExportURL"] = "/api/admin/contacts/export.csv?" + listQuery.Encode()
		fields = [][2]string{{"full_name", "Full Name"}, {"email", "Email"}, {"message", "Message"}, {"submission_time", "Submitted At"}}
	} else {
		v, err := services.LookupVariant(tab)
		if err != nil {
			a.pages.NotFound(ctx)
			return
		}
		rows, err := a.dash.ListScholarships(ctx.Request.Context(), v.Name, q)
		if err != nil {
			a.dashboardError(ctx, err)
			return
		}
		data["Variant"] = v
		data["Rows"] = rows
		data["ExportURL"] = fmt.Sprintf("/api/admin/scholarships/%s/export.csv?%s", v.Name, listQuery.Encode())
		fields = [][2]string{{"full_name", "Full Name"}}
		for _, slot := range v.Slots {
			fields = append(fields, [2]string{slot.Column, slot.Label})
		}
		fields = append(fields, [2]string{"submission_time", "Submitted At"}, [2]string{"reviewed", "Reviewed"},
			[2]string{"status", "Status"}, [2]string{"admin_notes", "Admin Notes"})
	}

	columns := make([]column, 0, len(fields))
	for _, f := range fields {
		next := q.Toggle(f[0])
		vals := url.Values{}
		vals.Set("tab", tab)
		vals.Set("sort", next.Sort)
		vals.Set("dir", next.Dir)
		if next.Q != "" {
			vals.Set("q", next.Q)
		}
		columns = append(columns, column{Label: f[1], URL: "/admin?" + vals.Encode(), Active: q.Sort == f[0], Dir: q.Dir})
	}
	data["Columns"] = columns

	a.pages.render(ctx, http.StatusOK, "admin.tmpl", "", data)
}

// UpdateReviewForm handles the inline edit form of the dashboard, then returns to it.
func (a *AdminController) UpdateReviewForm(ctx *gin.Context) {
	back := safeReturn(ctx.PostForm("return"))
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.Redirect(http.StatusSeeOther, addParam(back, "error", "invalid submission id"))
		return
	}
	var upd services.ReviewUpdate
	if err := ctx.ShouldBind(&upd); err != nil {
		ctx.Redirect(http.StatusSeeOther, addParam(back, "error", "invalid status"))
		return
	}

	if _, err := a.dash.UpdateReview(ctx.Request.Context(), ctx.Param("variant"), uint(id), upd); err != nil {
		ctx.Redirect(http.StatusSeeOther, addParam(back, "error", err.Error()))
		return
	}
	ctx.Redirect(http.StatusSeeOther, addParam(back, "saved", "1"))
}

func (a *AdminController) fail(ctx *gin.Context, err error) {
	var fe *services.FieldError
	switch {
	case errors.Is(err, services.ErrUnknownVariant), errors.Is(err, services.ErrUnknownRole), errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40420, err.Error())
	case errors.Is(err, services.ErrInvalidSort), errors.Is(err, services.ErrInvalidStatus):
		utils.Error(ctx, http.StatusBadRequest, 40021, err.Error())
	case errors.As(err, &fe):
		utils.ErrorWithData(ctx, http.StatusBadRequest, 40022, fe.Error(), gin.H{"fields": fe.Fields})
	default:
		utils.Sugar.Errorw("admin request failed", "path", ctx.Request.URL.Path, "error", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load submissions")
	}
}

func (a *AdminController) dashboardError(ctx *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidSort) {
		ctx.Redirect(http.StatusFound, "/admin?"+url.Values{"tab": {ctx.Query("tab")}, "error": {err.Error()}}.Encode())
		return
	}
	utils.Sugar.Errorw("dashboard failed", "error", err)
	ctx.String(http.StatusInternalServerError, "failed to load submissions")
}

func parseID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid submission id")
		return 0, false
	}
	return uint(id), true
}

func attachCSV(ctx *gin.Context, name string) {
	ctx.Header("Content-Type", "text/csv; charset=utf-8")
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Status(http.StatusOK)
}

// safeReturn only allows going back into the dashboard.
func safeReturn(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/admin") || strings.HasPrefix(raw, "//") {
		return "/admin"
	}
	return raw
}

func addParam(raw, key, value string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "/admin"
	}
	vals := u.Query()
	vals.Del("saved")
	vals.Del("error")
	vals.Set(key, value)
	u.RawQuery = vals.Encode()
	return u.String()
}
