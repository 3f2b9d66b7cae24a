package booking

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/events"
	"cabbooking/internal/metrics"
	"cabbooking/internal/modules/fare"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Lifecycle creates bookings from quotes and moves them through their statuses.
type Lifecycle struct {
	bookings  BookingRepository
	customers CustomerRepository
	pricer    Pricer
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewLifecycle(
	bookings BookingRepository,
	customers CustomerRepository,
	pricer Pricer,
	publisher events.Publisher,
	log *zap.Logger,
) *Lifecycle {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{
		bookings:  bookings,
		customers: customers,
		pricer:    pricer,
		events:    publisher,
		log:       log,
		now:       time.Now,
	}
}

// Create prices the trip and stores a pending booking. Nothing is stored when pricing fails.
func (s *Lifecycle) Create(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	in.TravelDate = strings.TrimSpace(in.TravelDate)
	in.TravelTime = strings.TrimSpace(in.TravelTime)
	if err := validateSchedule(in.TravelDate, in.TravelTime); err != nil {
		return nil, err
	}
	serviceType, err := domain.ParseServiceType(in.ServiceType)
	if err != nil {
		return nil, err
	}
	if serviceType == domain.ServiceLocal {
		if strings.TrimSpace(in.FromLocation) == "" || strings.TrimSpace(in.ToLocation) == "" {
			return nil, domain.ValidationError{Field: "from_location", Msg: "pickup and drop locations are required"}
		}
	}

	customer, err := s.customers.GetByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	quote, err := s.pricer.Quote(ctx, fare.TripRequest{
		ServiceType:   string(serviceType),
		FromCity:      in.FromCity,
		ToCity:        in.ToCity,
		CarType:       in.CarType,
		IsAirportTrip: in.IsAirportTrip,
	})
	if err != nil {
		return nil, err
	}

	b := &domain.Booking{
		CustomerID:     customer.ID,
		CustomerName:   customer.Name,
		CustomerPhone:  customer.Phone,
		CustomerEmail:  customer.Email,
		ServiceType:    quote.ServiceType,
		FromCityID:     quote.FromCityID,
		ToCityID:       quote.ToCityID,
		FromLocation:   firstNonEmpty(in.FromLocation, quote.FromCity),
		ToLocation:     firstNonEmpty(in.ToLocation, quote.ToCity),
		IsAirportTrip:  quote.IsAirportTrip,
		CarType:        quote.CarType,
		TravelDate:     in.TravelDate,
		TravelTime:     in.TravelTime,
		EstimatedPrice: quote.Price,
		Status:         domain.BookingPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	s.log.Info("booking created",
		zap.String("booking_id", b.ID),
		zap.String("service_type", string(b.ServiceType)),
		zap.Float64("estimated_price", b.EstimatedPrice),
	)
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeBookingCreated,
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Status:     b.Status,
		Price:      b.EstimatedPrice,
	})
	return b, nil
}

func (s *Lifecycle) Confirm(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, domain.BookingConfirmed, "")
}

func (s *Lifecycle) Complete(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, domain.BookingCompleted, "")
}

func (s *Lifecycle) Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, domain.BookingCancelled, reason)
}

// Transition moves a booking to the requested status.
func (s *Lifecycle) Transition(ctx context.Context, actor domain.Actor, id string, to domain.BookingStatus) (*domain.Booking, error) {
	return s.transition(ctx, actor, id, to, "")
}

func (s *Lifecycle) transition(ctx context.Context, actor domain.Actor, id string, to domain.BookingStatus, reason string) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, adminRequired()
	}

	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := current.Status
	if !from.CanTransition(to) {
		return nil, invalidTransition(from, to)
	}

	updated, err := s.bookings.Transition(ctx, id, from, to, reason)
	if err != nil {
		// the row moved under us; report against what is stored now
		if errors.Is(err, domain.ErrStaleBooking) && updated != nil && !updated.Status.CanTransition(to) {
			return nil, invalidTransition(updated.Status, to)
		}
		return nil, err
	}

	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	s.log.Info("booking status changed",
		zap.String("booking_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actor.ID),
	)
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeBookingStatusChanged,
		BookingID:  updated.ID,
		CustomerID: updated.CustomerID,
		From:       from,
		Status:     updated.Status,
		Price:      updated.EstimatedPrice,
		ActorID:    actor.ID,
	})
	return updated, nil
}

// OverridePrice is the only way estimatedPrice changes after creation.
func (s *Lifecycle) OverridePrice(ctx context.Context, actor domain.Actor, id string, price float64, reason string) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, adminRequired()
	}
	if price <= 0 {
		return nil, domain.ValidationError{Field: "price", Msg: "price must be positive", Err: domain.ErrInvalidPrice}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.ValidationError{Field: "reason", Msg: "a reason is required"}
	}

	b, err := s.bookings.OverridePrice(ctx, id, math.Round(price*100)/100, reason)
	if err != nil {
		return nil, err
	}

	s.log.Info("booking price overridden",
		zap.String("booking_id", id),
		zap.Float64("price", b.EstimatedPrice),
		zap.String("actor_id", actor.ID),
	)
	s.publish(ctx, events.BookingEvent{
		Type:       events.TypeBookingPriceOverride,
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		Status:     b.Status,
		Price:      b.EstimatedPrice,
		ActorID:    actor.ID,
	})
	return b, nil
}

func (s *Lifecycle) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, adminRequired()
	}
	return s.bookings.GetByID(ctx, id)
}

func (s *Lifecycle) List(ctx context.Context, actor domain.Actor, f domain.BookingFilter) ([]domain.Booking, error) {
	if !actor.IsAdmin() {
		return nil, adminRequired()
	}
	return s.bookings.List(ctx, f)
}

// publish never fails the caller; the booking is already committed.
func (s *Lifecycle) publish(ctx context.Context, ev events.BookingEvent) {
	ev.OccurredAt = s.now().UTC()
	if err := s.events.PublishBooking(ctx, ev); err != nil {
		s.log.Warn("booking event not published",
			zap.String("booking_id", ev.BookingID),
			zap.String("event_type", ev.Type),
			zap.Error(err),
		)
	}
}

func validateSchedule(date, clock string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return domain.ValidationError{Field: "travel_date", Msg: "travel_date must be YYYY-MM-DD"}
	}
	if _, err := time.Parse(timeLayout, clock); err != nil {
		return domain.ValidationError{Field: "travel_time", Msg: "travel_time must be HH:MM"}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
