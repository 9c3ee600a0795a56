package handler

import (
	"context"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TrackingHandler struct {
	trackingService service.TrackingService
}

func NewTrackingHandler(trackingService service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

func (h *TrackingHandler) RegisterRoutes(router *gin.RouterGroup) {
	tracking := router.Group("/tracking", middleware.RequireAuth())
	{
		tracking.GET("", h.List)
		tracking.PATCH("/:id/deliver", h.Deliver)
		tracking.PATCH("/:id/restore", h.Restore)
	}
}

// List returns trackings ordered by deadline, with derived deadline
// fields computed at read time
func (h *TrackingHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.trackingService.List(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(gin.H{
		"items": items,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// Deliver marks the voucher funds as handed over, starting the
// justification deadline
func (h *TrackingHandler) Deliver(c *gin.Context) {
	h.action(c, h.trackingService.Deliver)
}

// Restore returns an overdue tracking to delivered so it can still be
// justified
func (h *TrackingHandler) Restore(c *gin.Context) {
	h.action(c, h.trackingService.Restore)
}

func (h *TrackingHandler) action(
	c *gin.Context,
	act func(context.Context, workflow.Actor, string, service.TrackingActionRequest) (service.TrackingResponse, error),
) {
	var req service.TrackingActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := act(ctx, middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
