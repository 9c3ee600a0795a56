package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	documentService service.DocumentService
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup) {
	document := router.Group("/document", middleware.RequireAuth())
	{
		document.GET("", h.List)
		document.GET("/tracking/:id", h.ListByTracking)
		document.POST("", h.File)
	}
}

// List returns filed justification documents
func (h *DocumentHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.documentService.List(c.Request.Context(), params.Page, params.Limit)
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

// ListByTracking returns the documents filed for one tracking
func (h *DocumentHandler) ListByTracking(c *gin.Context) {
	items, err := h.documentService.ListByTracking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(items))
}

// File attaches a justification document, moving the tracking and its
// voucher to justified
func (h *DocumentHandler) File(c *gin.Context) {
	var req service.FileDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := h.documentService.File(ctx, middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(result))
}
