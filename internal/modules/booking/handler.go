package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/domain"
	"cabbooking/internal/middleware"
	"cabbooking/internal/pkg/response"
)

type Handler struct {
	service *Lifecycle
}

func NewHandler(service *Lifecycle) *Handler {
	return &Handler{service: service}
}

// RegisterCustomerRoutes expects rg to authenticate a customer.
func (h *Handler) RegisterCustomerRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
}

// RegisterAdminRoutes expects rg to authenticate an administrator.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/confirm", h.Confirm)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.POST("/bookings/:id/complete", h.Complete)
	rg.PUT("/bookings/:id/price", h.OverridePrice)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	actor := middleware.Actor(c)
	b, err := h.service.Create(c.Request.Context(), req.toInput(actor.ID))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListBookings(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}
	filter, err := q.toFilter()
	if err != nil {
		response.FromError(c, err)
		return
	}

	list, err := h.service.List(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"bookings": list, "count": len(list)})
}

func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.service.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Confirm(c *gin.Context) {
	b, err := h.service.Confirm(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	h.writeBooking(c, b, err)
}

func (h *Handler) Complete(c *gin.Context) {
	b, err := h.service.Complete(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	h.writeBooking(c, b, err)
}

func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	b, err := h.service.Cancel(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Reason)
	h.writeBooking(c, b, err)
}

func (h *Handler) OverridePrice(c *gin.Context) {
	var req OverridePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "price and reason are required")
		return
	}

	b, err := h.service.OverridePrice(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Price, req.Reason)
	h.writeBooking(c, b, err)
}

func (h *Handler) writeBooking(c *gin.Context, b *domain.Booking, err error) {
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"booking": b})
}
