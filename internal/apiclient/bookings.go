package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"cabbooking/internal/domain"
)

type bookingBody struct {
	Booking domain.Booking `json:"booking"`
}

func (c *Client) adminCall(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, method, adminPath+path, query, token, body, out)
}

func (c *Client) bookingCall(ctx context.Context, method, path string, body any) (*domain.Booking, error) {
	var out bookingBody
	if err := c.adminCall(ctx, method, path, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Booking, nil
}

func (c *Client) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ServiceType != "" {
		q.Set("service_type", string(f.ServiceType))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	var out struct {
		Bookings []domain.Booking `json:"bookings"`
	}
	if err := c.adminCall(ctx, http.MethodGet, "/bookings", q, nil, &out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodGet, "/bookings/"+url.PathEscape(id), nil)
}

func (c *Client) ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPost, "/bookings/"+url.PathEscape(id)+"/confirm", nil)
}

func (c *Client) CancelBooking(ctx context.Context, id, reason string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPost, "/bookings/"+url.PathEscape(id)+"/cancel", map[string]string{"reason": reason})
}

func (c *Client) CompleteBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPost, "/bookings/"+url.PathEscape(id)+"/complete", nil)
}

func (c *Client) OverridePrice(ctx context.Context, id string, price float64, reason string) (*domain.Booking, error) {
	return c.bookingCall(ctx, http.MethodPut, "/bookings/"+url.PathEscape(id)+"/price", map[string]any{
		"price":  price,
		"reason": reason,
	})
}

// Quote is a public fare as returned by the fares endpoints.
type Quote struct {
	ServiceType   domain.ServiceType `json:"service_type"`
	CarType       domain.CarType     `json:"car_type"`
	FromCity      string             `json:"from_city,omitempty"`
	ToCity        string             `json:"to_city,omitempty"`
	IsAirportTrip bool               `json:"is_airport_trip"`
	Price         float64            `json:"price"`
}

func (c *Client) OutstationFare(ctx context.Context, from, to string, car domain.CarType) (*Quote, error) {
	var out struct {
		Quote Quote `json:"quote"`
	}
	q := url.Values{"from": {from}, "to": {to}, "car_type": {string(car)}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/fares/outstation", q, "", nil, &out); err != nil {
		return nil, err
	}
	return &out.Quote, nil
}

func (c *Client) LocalFare(ctx context.Context, car domain.CarType, airport bool) (*Quote, error) {
	var out struct {
		Quote Quote `json:"quote"`
	}
	q := url.Values{"car_type": {string(car)}, "airport": {strconv.FormatBool(airport)}}
	if err := c.do(ctx, http.MethodGet, "/api/v1/fares/local", q, "", nil, &out); err != nil {
		return nil, err
	}
	return &out.Quote, nil
}
