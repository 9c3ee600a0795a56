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

type AuthorizationHandler struct {
	authorizationService service.AuthorizationService
}

func NewAuthorizationHandler(authorizationService service.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{authorizationService: authorizationService}
}

func (h *AuthorizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	autorizaciones := router.Group("/autorizaciones", middleware.RequireAuth())
	{
		autorizaciones.GET("/", h.List)
		autorizaciones.GET("/pendientes-jefe/:id", h.ListPendientesJefe)
		autorizaciones.POST("/aprobar", h.Aprobar)
		autorizaciones.POST("/rechazar", h.Rechazar)
		autorizaciones.POST("/observar", h.Observar)
		autorizaciones.PATCH("/:id/registrar", h.Registrar)
		autorizaciones.POST("/:id/reabrir", h.Reabrir)
	}
}

// List returns authorizations, optionally filtered by estado
func (h *AuthorizationHandler) List(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.authorizationService.List(c.Request.Context(), c.Query("estado"), params.Page, params.Limit)
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

// ListPendientesJefe returns the Pendiente Jefe queue for a given jefe
func (h *AuthorizationHandler) ListPendientesJefe(c *gin.Context) {
	jefeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("Invalid jefe id"))
		return
	}

	items, err := h.authorizationService.ListPendientesJefe(c.Request.Context(), jefeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(items))
}

// Aprobar approves a pending authorization as jefe
func (h *AuthorizationHandler) Aprobar(c *gin.Context) {
	h.decideJefe(c, h.authorizationService.Aprobar)
}

// Rechazar rejects a pending authorization as jefe
func (h *AuthorizationHandler) Rechazar(c *gin.Context) {
	h.decideJefe(c, h.authorizationService.Rechazar)
}

// Observar sends a pending authorization back with observations
func (h *AuthorizationHandler) Observar(c *gin.Context) {
	h.decideJefe(c, h.authorizationService.Observar)
}

func (h *AuthorizationHandler) decideJefe(
	c *gin.Context,
	decide func(context.Context, workflow.Actor, service.DecisionJefeRequest) (service.AuthorizationResponse, error),
) {
	var req service.DecisionJefeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := decide(ctx, middleware.ActorFromContext(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Registrar marks an approved authorization as registered in the
// attendance system
func (h *AuthorizationHandler) Registrar(c *gin.Context) {
	var req service.RegistrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := h.authorizationService.Registrar(ctx, middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}

// Reabrir returns an observed authorization to the jefe queue
func (h *AuthorizationHandler) Reabrir(c *gin.Context) {
	var req service.ReabrirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(err.Error()))
		return
	}

	ctx, cancel := timeoutContext(c)
	defer cancel()

	result, err := h.authorizationService.Reabrir(ctx, middleware.ActorFromContext(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(result))
}
