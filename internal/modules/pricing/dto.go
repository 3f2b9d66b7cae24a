package pricing

type CreateCityRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpsertRouteRequest accepts a city id or name for either end.
type UpsertRouteRequest struct {
	FromCity     string  `json:"from_city" binding:"required"`
	ToCity       string  `json:"to_city" binding:"required"`
	Price4Seater float64 `json:"price_4_seater" binding:"required"`
	Price6Seater float64 `json:"price_6_seater" binding:"required"`
}

type LocalPricingRequest struct {
	FourSeaterRate        float64 `json:"four_seater_rate" binding:"required"`
	SixSeaterRate         float64 `json:"six_seater_rate" binding:"required"`
	AirportFourSeaterRate float64 `json:"airport_four_seater_rate" binding:"required"`
	AirportSixSeaterRate  float64 `json:"airport_six_seater_rate" binding:"required"`
}
