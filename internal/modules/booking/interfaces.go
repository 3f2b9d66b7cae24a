package booking

import (
	"context"

	"cabbooking/internal/domain"
	"cabbooking/internal/modules/fare"
)

// BookingRepository defines the interface for booking operations
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	Transition(ctx context.Context, id string, from, to domain.BookingStatus, reason string) (*domain.Booking, error)
	OverridePrice(ctx context.Context, id string, price float64, reason string) (*domain.Booking, error)
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// Pricer quotes the trip a booking is created for.
type Pricer interface {
	Quote(ctx context.Context, req fare.TripRequest) (*fare.Quote, error)
}
