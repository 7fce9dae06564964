package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
	"github.com/dpefoundation/website/web"
)

// ConfigController serves the site settings a client needs to render its chrome.
type ConfigController struct {
	site *web.Site
}

func NewConfigController(site *web.Site) *ConfigController { return &ConfigController{site: site} }

// GetSite returns name, contact details and navigation.
func (c *ConfigController) GetSite(ctx *gin.Context) {
	utils.Success(ctx, gin.H{
		"name":    c.site.Name,
		"tagline": c.site.Tagline,
		"email":   c.site.Email,
		"phone":   c.site.Phone,
		"address": c.site.Address,
		"nav":     c.site.Nav,
		"footer":  c.site.Footer,
	})
}

// GetVariants lists the scholarship programmes and the documents each requires.
func (c *ConfigController) GetVariants(ctx *gin.Context) {
	utils.Success(ctx, gin.H{"items": services.Variants()})
}
