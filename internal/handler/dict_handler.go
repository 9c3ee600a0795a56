package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// DictHandler serves the lookup catalogs the front end needs to render
// forms: roles, areas and cost centers.
type DictHandler struct {
	dictService service.DictService
}

func NewDictHandler(dictService service.DictService) *DictHandler {
	return &DictHandler{dictService: dictService}
}

func (h *DictHandler) RegisterRoutes(router *gin.RouterGroup) {
	dict := router.Group("", middleware.RequireAuth())
	{
		dict.GET("/roles", h.ListRoles)
		dict.GET("/areas", h.ListAreas)
		dict.GET("/costcenters", h.ListCostCenters)
	}
}

func (h *DictHandler) ListRoles(c *gin.Context) {
	roles, err := h.dictService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(roles))
}

func (h *DictHandler) ListAreas(c *gin.Context) {
	areas, err := h.dictService.ListAreas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(areas))
}

func (h *DictHandler) ListCostCenters(c *gin.Context) {
	centers, err := h.dictService.ListCostCenters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(centers))
}
