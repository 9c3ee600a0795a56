package handler

import (
	"context"
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/workflow"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	voucherService service.VoucherService
}

func NewVoucherHandler(voucherService service.VoucherService) *VoucherHandler {
	return &VoucherHandler{voucherService: voucherService}
}

func (h *VoucherHandler) RegisterRoutes(router *gin.RouterGroup) {
	voucher := router.Group("/voucher", middleware.RequireAuth())
	{
		voucher.GET("", h.List)
		voucher.POST("/save", h.Create)
		voucher.PUT("/update", h.Update)
		voucher.PATCH("/:id/approve", h.Approve)
		voucher.PATCH("/:id/reject", h.Reject)
		voucher.POST("/:id/complete", h.CompleteProcess)
	}
}

// List returns vouchers, optionally filtered by status and applicant
func (h *VoucherHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	applicantID, _ := strconv.ParseInt(c.Query("applicant_id"), 10, 64)

	items, total, err := h.voucherService.List(c.Request.Context(), c.Query("status"), applicantID, params.Page, params.Limit)
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

// Create registers a new payment voucher in pending state
func (h *VoucherHandler) Create(c *gin.Context) {
	var req service.CreateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := h.voucherService.Create(ctx, middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}

// Update modifies a voucher that is still pending
func (h *VoucherHandler) Update(c *gin.Context) {
	var req service.UpdateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := h.voucherService.Update(ctx, middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Approve moves a pending voucher to approved
func (h *VoucherHandler) Approve(c *gin.Context) {
	h.decide(c, h.voucherService.Approve)
}

// Reject moves a pending voucher to rejected
func (h *VoucherHandler) Reject(c *gin.Context) {
	h.decide(c, h.voucherService.Reject)
}

// CompleteProcess closes a justified voucher together with its tracking
func (h *VoucherHandler) CompleteProcess(c *gin.Context) {
	h.decide(c, h.voucherService.CompleteProcess)
}

func (h *VoucherHandler) decide(
	c *gin.Context,
	decide func(context.Context, workflow.Actor, string, service.VoucherDecisionRequest) (service.VoucherResponse, error),
) {
	var req service.VoucherDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := decide(ctx, middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
