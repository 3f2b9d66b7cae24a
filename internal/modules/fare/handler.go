package fare

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/response"
)

type Handler struct {
	calc *Calculator
}

func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cities", h.ListCities)
	rg.GET("/fares/outstation", h.Outstation)
	rg.GET("/fares/local", h.Local)
	rg.POST("/fares/quote", h.QuoteTrip)
}

func (h *Handler) ListCities(c *gin.Context) {
	cities, err := h.calc.Cities(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cities": cities})
}

func (h *Handler) Outstation(c *gin.Context) {
	var q OutstationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "from, to and car_type are required")
		return
	}

	quote, err := h.calc.Quote(c.Request.Context(), TripRequest{
		ServiceType: string(domain.ServiceOutstation),
		FromCity:    q.From,
		ToCity:      q.To,
		CarType:     q.CarType,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) Local(c *gin.Context) {
	var q LocalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "car_type is required")
		return
	}

	quote, err := h.calc.Quote(c.Request.Context(), TripRequest{
		ServiceType:   string(domain.ServiceLocal),
		CarType:       q.CarType,
		IsAirportTrip: q.Airport,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}

func (h *Handler) QuoteTrip(c *gin.Context) {
	var req TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	quote, err := h.calc.Quote(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"quote": quote})
}
