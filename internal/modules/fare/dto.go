package fare

import "cabbooking/internal/domain"

// TripRequest is what a customer asks a price for.
// FromCity and ToCity accept a city id or name and are only read for outstation trips.
type TripRequest struct {
	ServiceType   string `json:"service_type"`
	FromCity      string `json:"from_city"`
	ToCity        string `json:"to_city"`
	CarType       string `json:"car_type"`
	IsAirportTrip bool   `json:"is_airport_trip"`
}

type Quote struct {
	ServiceType   domain.ServiceType `json:"service_type"`
	CarType       domain.CarType     `json:"car_type"`
	FromCityID    string             `json:"from_city_id,omitempty"`
	FromCity      string             `json:"from_city,omitempty"`
	ToCityID      string             `json:"to_city_id,omitempty"`
	ToCity        string             `json:"to_city,omitempty"`
	IsAirportTrip bool               `json:"is_airport_trip"`
	Price         float64            `json:"price"`
}

type OutstationQuery struct {
	From    string `form:"from" binding:"required"`
	To      string `form:"to" binding:"required"`
	CarType string `form:"car_type" binding:"required"`
}

type LocalQuery struct {
	CarType string `form:"car_type" binding:"required"`
	Airport bool   `form:"airport"`
}
