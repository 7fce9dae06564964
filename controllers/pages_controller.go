package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/web"
)

// Notice kinds rendered by the page header.
const (
	noticeSuccess = "success"
	noticeError   = "error"
)

// PublicPages maps each public path to its content key. Page views are recorded for these paths only.
var PublicPages = map[string]string{
	"/":             "home",
	"/about":        "about",
	"/programs":     "programs",
	"/facilities":   "facilities",
	"/scholarships": "scholarships",
	"/policies":     "policies",
	"/contact":      "contact",
}

// PageController renders the public website.
type PageController struct {
	site *web.Site
}

func NewPageController(site *web.Site) *PageController {
	return &PageController{site: site}
}

// Show renders the content page registered for the request path.
func (p *PageController) Show(ctx *gin.Context) {
	key, ok := PublicPages[ctx.Request.URL.Path]
	if !ok {
		p.NotFound(ctx)
		return
	}
	switch key {
	case "scholarships":
		p.render(ctx, http.StatusOK, "scholarships.tmpl", key, gin.H{"Variants": services.Variants()})
	case "contact":
		p.render(ctx, http.StatusOK, "contact.tmpl", key, gin.H{"Form": services.ContactInput{}})
	default:
		p.render(ctx, http.StatusOK, "page.tmpl", key, nil)
	}
}

// NotFound renders the 404 page.
func (p *PageController) NotFound(ctx *gin.Context) {
	p.render(ctx, http.StatusNotFound, "not_found.tmpl", "", gin.H{"Page": web.Page{Title: "Page not found"}})
}

// render fills the values every template expects, then applies extra on top.
func (p *PageController) render(ctx *gin.Context, status int, tmpl, key string, extra gin.H) {
	data := gin.H{
		"Site":       p.site,
		"Page":       p.site.PageOrEmpty(key),
		"Path":       ctx.Request.URL.Path,
		"Notice":     "",
		"NoticeKind": "",
	}
	if tmpl == "contact.tmpl" || tmpl == "scholarships.tmpl" {
		data["Captcha"] = newCaptcha()
	}
	for k, v := range extra {
		data[k] = v
	}
	ctx.HTML(status, tmpl, data)
}

// withNotice attaches the transient message shown after a form post.
func withNotice(extra gin.H, kind, msg string) gin.H {
	if extra == nil {
		extra = gin.H{}
	}
	extra["Notice"] = msg
	extra["NoticeKind"] = kind
	return extra
}
