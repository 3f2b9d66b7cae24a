package pricing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes expects rg to authenticate an administrator.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/cities", h.CreateCity)
	rg.GET("/routes", h.ListRoutes)
	rg.PUT("/routes", h.UpsertRoute)
	rg.DELETE("/routes/:id", h.DeleteRoute)
	rg.GET("/pricing/local", h.GetLocalPricing)
	rg.PUT("/pricing/local", h.ReplaceLocalPricing)
}

func (h *Handler) CreateCity(c *gin.Context) {
	var req CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "name is required")
		return
	}
	city, err := h.service.CreateCity(c.Request.Context(), req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"city": city})
}

func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.service.ListRoutes(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"routes": routes})
}

func (h *Handler) UpsertRoute(c *gin.Context) {
	var req UpsertRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from_city, to_city and both prices are required")
		return
	}
	route, err := h.service.UpsertRoute(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"route": route})
}

func (h *Handler) DeleteRoute(c *gin.Context) {
	if err := h.service.DeleteRoute(c.Request.Context(), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetLocalPricing(c *gin.Context) {
	z, err := h.service.LocalPricing(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pricing": z})
}

func (h *Handler) ReplaceLocalPricing(c *gin.Context) {
	var req LocalPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "all four rates are required")
		return
	}
	z, err := h.service.ReplaceLocalPricing(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"pricing": z})
}
