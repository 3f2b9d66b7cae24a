package console

import (
	"context"

	"cabbooking/internal/domain"
	"cabbooking/internal/session"
)

type BookingAPI interface {
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id, reason string) (*domain.Booking, error)
	CompleteBooking(ctx context.Context, id string) (*domain.Booking, error)
	OverridePrice(ctx context.Context, id string, price float64, reason string) (*domain.Booking, error)
}

// BookingDesk is the console's booking screen. It only reads the session store
// and refuses to call the API without an authenticated admin session.
type BookingDesk struct {
	api   BookingAPI
	store *session.Store
}

func NewBookingDesk(api BookingAPI, store *session.Store) *BookingDesk {
	return &BookingDesk{api: api, store: store}
}

func (d *BookingDesk) authorize() error {
	snap := d.store.Snapshot()
	if snap.State != session.Authenticated || snap.User == nil || snap.User.Role != domain.RoleAdmin {
		return sessionRequired()
	}
	return nil
}

func (d *BookingDesk) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	return d.api.ListBookings(ctx, filter)
}

func (d *BookingDesk) Get(ctx context.Context, id string) (*domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	return d.api.GetBooking(ctx, id)
}

func (d *BookingDesk) Confirm(ctx context.Context, id string) (*domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	return d.api.ConfirmBooking(ctx, id)
}

func (d *BookingDesk) Cancel(ctx context.Context, id, reason string) (*domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	return d.api.CancelBooking(ctx, id, reason)
}

func (d *BookingDesk) Complete(ctx context.Context, id string) (*domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	return d.api.CompleteBooking(ctx, id)
}

func (d *BookingDesk) OverridePrice(ctx context.Context, id string, price float64, reason string) (*domain.Booking, error) {
	if err := d.authorize(); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, domain.ValidationError{Field: "price", Msg: "price must be positive", Err: domain.ErrInvalidPrice}
	}
	return d.api.OverridePrice(ctx, id, price, reason)
}

// Message renders a booking desk error for the administrator.
func Message(err error) string { return messageFor(err) }
