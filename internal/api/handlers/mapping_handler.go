package handlers

import (
	"net/http"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/mapping"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type MappingHandler struct {
	mappings  *service.MappingService
	forecasts *service.ForecastService
}

func NewMappingHandler(mappings *service.MappingService, forecasts *service.ForecastService) *MappingHandler {
	return &MappingHandler{mappings: mappings, forecasts: forecasts}
}

type groupRequest struct {
	Name string `json:"name"`
}

type variationRequest struct {
	Kind  mapping.VariationKind `json:"kind" binding:"required"`
	Value string                `json:"value" binding:"required"`
}

func (h *MappingHandler) ListGroups(c *gin.Context) {
	c.JSON(http.StatusOK, h.mappings.Groups())
}

func (h *MappingHandler) GetGroup(c *gin.Context) {
	g, err := h.mappings.Group(c.Param("id"))
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *MappingHandler) AddGroup(c *gin.Context) {
	var req groupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.mappings.AddGroup(c.Request.Context(), req.Name)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// UpdateGroup applies the fields present in the body. A Name alone renames
// the group.
func (h *MappingHandler) UpdateGroup(c *gin.Context) {
	var u mapping.GroupUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.mappings.UpdateGroup(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *MappingHandler) DeleteGroup(c *gin.Context) {
	if err := h.mappings.DeleteGroup(c.Request.Context(), c.Param("id")); err != nil {
		domainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MappingHandler) AddVariation(c *gin.Context) {
	var req variationRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validKind(req.Kind) {
		errorResponse(c, http.StatusBadRequest, "kind must be name or article and value is required")
		return
	}

	if err := h.mappings.AddVariation(c.Request.Context(), c.Param("id"), req.Kind, req.Value); err != nil {
		domainError(c, err)
		return
	}
	h.GetGroup(c)
}

func (h *MappingHandler) RemoveVariation(c *gin.Context) {
	var req variationRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validKind(req.Kind) {
		errorResponse(c, http.StatusBadRequest, "kind must be name or article and value is required")
		return
	}

	if err := h.mappings.RemoveVariation(c.Request.Context(), c.Param("id"), req.Kind, req.Value); err != nil {
		domainError(c, err)
		return
	}
	h.GetGroup(c)
}

// Import rebuilds the database from the products of the current run.
func (h *MappingHandler) Import(c *gin.Context) {
	groups, err := h.mappings.Import(c.Request.Context(), h.forecasts.Products())
	if err != nil {
		domainError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func validKind(k mapping.VariationKind) bool {
	return k == mapping.NameVariation || k == mapping.ArticleVariation
}
