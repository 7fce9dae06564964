package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
)

// StatsController provides dashboard statistics such as submission counts and daily page views.
type StatsController struct {
	svc *services.StatsService
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(svc *services.StatsService) *StatsController {
	return &StatsController{svc: svc}
}

// GetStats returns per-variant and per-status counts, the contact count and today's page views.
func (s *StatsController) GetStats(ctx *gin.Context) {
	utils.Success(ctx, s.svc.Collect(ctx.Request.Context()))
}
