package domain

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// allowedTransitions is the complete lifecycle; a missing pair is an invalid transition.
var allowedTransitions = map[BookingStatus]map[BookingStatus]bool{
	BookingPending:   {BookingConfirmed: true, BookingCancelled: true},
	BookingConfirmed: {BookingCompleted: true, BookingCancelled: true},
	BookingCompleted: {},
	BookingCancelled: {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(s))) {
	case BookingPending:
		return BookingPending, nil
	case BookingConfirmed:
		return BookingConfirmed, nil
	case BookingCancelled:
		return BookingCancelled, nil
	case BookingCompleted:
		return BookingCompleted, nil
	default:
		return "", ValidationError{Field: "status", Msg: "unknown booking status", Err: ErrInvalidStatus}
	}
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	targets, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	return targets[next]
}

type ServiceType string

const (
	ServiceOutstation ServiceType = "outstation"
	ServiceLocal      ServiceType = "local"
)

// ParseServiceType also accepts the legacy "mumbai-local" spelling.
func ParseServiceType(s string) (ServiceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ServiceOutstation):
		return ServiceOutstation, nil
	case string(ServiceLocal), "mumbai-local":
		return ServiceLocal, nil
	default:
		return "", ValidationError{Field: "service_type", Msg: "unsupported service type", Err: ErrUnsupportedService}
	}
}

type CarType string

const (
	CarFourSeater CarType = "4-seater"
	CarSixSeater  CarType = "6-seater"
)

func ParseCarType(s string) (CarType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(CarFourSeater):
		return CarFourSeater, nil
	case string(CarSixSeater):
		return CarSixSeater, nil
	default:
		return "", ValidationError{Field: "car_type", Msg: "unsupported car type", Err: ErrUnsupportedCarType}
	}
}

type Booking struct {
	ID string `json:"id"`

	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	CustomerEmail string `json:"customer_email,omitempty"`

	ServiceType   ServiceType `json:"service_type"`
	FromCityID    string      `json:"from_city_id,omitempty"`
	ToCityID      string      `json:"to_city_id,omitempty"`
	FromLocation  string      `json:"from_location"`
	ToLocation    string      `json:"to_location"`
	IsAirportTrip bool        `json:"is_airport_trip"`
	CarType       CarType     `json:"car_type"`
	TravelDate    string      `json:"travel_date"`
	TravelTime    string      `json:"travel_time"`

	EstimatedPrice      float64    `json:"estimated_price"`
	OriginalPrice       *float64   `json:"original_price,omitempty"`
	PriceOverrideReason string     `json:"price_override_reason,omitempty"`
	PriceOverriddenAt   *time.Time `json:"price_overridden_at,omitempty"`

	Status             BookingStatus `json:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingFilter narrows the admin listing; zero values match everything.
type BookingFilter struct {
	Status      BookingStatus
	ServiceType ServiceType
	Limit       int
	Offset      int
}
