package booking

import "cabbooking/internal/domain"

// CreateBookingInput is a customer's trip request plus the schedule.
type CreateBookingInput struct {
	CustomerID    string
	ServiceType   string
	FromCity      string
	ToCity        string
	FromLocation  string
	ToLocation    string
	IsAirportTrip bool
	CarType       string
	TravelDate    string
	TravelTime    string
}

type CreateBookingRequest struct {
	ServiceType   string `json:"service_type" binding:"required"`
	FromCity      string `json:"from_city"`
	ToCity        string `json:"to_city"`
	FromLocation  string `json:"from_location"`
	ToLocation    string `json:"to_location"`
	IsAirportTrip bool   `json:"is_airport_trip"`
	CarType       string `json:"car_type" binding:"required"`
	TravelDate    string `json:"travel_date" binding:"required"`
	TravelTime    string `json:"travel_time" binding:"required"`
}

func (r CreateBookingRequest) toInput(customerID string) CreateBookingInput {
	return CreateBookingInput{
		CustomerID:    customerID,
		ServiceType:   r.ServiceType,
		FromCity:      r.FromCity,
		ToCity:        r.ToCity,
		FromLocation:  r.FromLocation,
		ToLocation:    r.ToLocation,
		IsAirportTrip: r.IsAirportTrip,
		CarType:       r.CarType,
		TravelDate:    r.TravelDate,
		TravelTime:    r.TravelTime,
	}
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type OverridePriceRequest struct {
	Price  float64 `json:"price" binding:"required"`
	Reason string  `json:"reason" binding:"required"`
}

type ListQuery struct {
	Status      string `form:"status"`
	ServiceType string `form:"service_type"`
	Limit       int    `form:"limit"`
	Offset      int    `form:"offset"`
}

func (q ListQuery) toFilter() (domain.BookingFilter, error) {
	f := domain.BookingFilter{Limit: q.Limit, Offset: q.Offset}
	if q.Status != "" {
		st, err := domain.ParseBookingStatus(q.Status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if q.ServiceType != "" {
		st, err := domain.ParseServiceType(q.ServiceType)
		if err != nil {
			return f, err
		}
		f.ServiceType = st
	}
	return f, nil
}
