package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpefoundation/website/services"
	"github.com/dpefoundation/website/utils"
)

// HeartbeatController keeps the database from idling out.
type HeartbeatController struct {
	svc *services.HeartbeatService
}

func NewHeartbeatController(svc *services.HeartbeatService) *HeartbeatController {
	return &HeartbeatController{svc: svc}
}

// Beat upserts the heartbeat row.
func (h *HeartbeatController) Beat(ctx *gin.Context) {
	hb, err := h.svc.Beat(ctx.Request.Context())
	if err != nil {
		utils.Sugar.Errorw("heartbeat failed", "error", err)
		utils.ErrorWithData(ctx, http.StatusInternalServerError, 50040, "heartbeat failed", gin.H{"details": err.Error()})
		return
	}
	utils.SuccessMessage(ctx, "Heartbeat updated", hb)
}

// Latest returns the heartbeat row.
func (h *HeartbeatController) Latest(ctx *gin.Context) {
	rows, err := h.svc.Latest(ctx.Request.Context())
	if err != nil {
		utils.ErrorWithData(ctx, http.StatusInternalServerError, 50041, "failed to fetch heartbeat", gin.H{"details": err.Error()})
		return
	}
	utils.Success(ctx, rows)
}
