package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cabbooking/internal/domain"
)

const (
	defaultBookingPageSize = 50
	maxBookingPageSize     = 200
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID string `gorm:"column:id;primaryKey;size:36"`

	CustomerID    string  `gorm:"column:customer_id;size:36;index;not null"`
	CustomerName  string  `gorm:"column:customer_name;size:120"`
	CustomerPhone string  `gorm:"column:customer_phone;size:32"`
	CustomerEmail *string `gorm:"column:customer_email;size:255"`

	ServiceType   string  `gorm:"column:service_type;size:20;index;not null"`
	FromCityID    *string `gorm:"column:from_city_id;size:36"`
	ToCityID      *string `gorm:"column:to_city_id;size:36"`
	FromLocation  string  `gorm:"column:from_location;size:255"`
	ToLocation    string  `gorm:"column:to_location;size:255"`
	IsAirportTrip bool    `gorm:"column:is_airport_trip;not null;default:false"`
	CarType       string  `gorm:"column:car_type;size:20;not null"`
	TravelDate    string  `gorm:"column:travel_date;size:10"`
	TravelTime    string  `gorm:"column:travel_time;size:5"`

	EstimatedPrice      float64    `gorm:"column:estimated_price;type:numeric(12,2);not null"`
	OriginalPrice       *float64   `gorm:"column:original_price;type:numeric(12,2)"`
	PriceOverrideReason *string    `gorm:"column:price_override_reason"`
	PriceOverriddenAt   *time.Time `gorm:"column:price_overridden_at"`

	Status             string     `gorm:"column:status;size:20;index;not null"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:                  b.ID,
		CustomerID:          b.CustomerID,
		CustomerName:        b.CustomerName,
		CustomerPhone:       b.CustomerPhone,
		CustomerEmail:       nullableString(b.CustomerEmail),
		ServiceType:         string(b.ServiceType),
		FromCityID:          nullableString(b.FromCityID),
		ToCityID:            nullableString(b.ToCityID),
		FromLocation:        b.FromLocation,
		ToLocation:          b.ToLocation,
		IsAirportTrip:       b.IsAirportTrip,
		CarType:             string(b.CarType),
		TravelDate:          b.TravelDate,
		TravelTime:          b.TravelTime,
		EstimatedPrice:      b.EstimatedPrice,
		OriginalPrice:       b.OriginalPrice,
		PriceOverrideReason: nullableString(b.PriceOverrideReason),
		PriceOverriddenAt:   b.PriceOverriddenAt,
		Status:              string(b.Status),
		CancellationReason:  nullableString(b.CancellationReason),
		ConfirmedAt:         b.ConfirmedAt,
		CompletedAt:         b.CompletedAt,
		CancelledAt:         b.CancelledAt,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

func (m bookingModel) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:                  m.ID,
		CustomerID:          m.CustomerID,
		CustomerName:        m.CustomerName,
		CustomerPhone:       m.CustomerPhone,
		CustomerEmail:       derefString(m.CustomerEmail),
		ServiceType:         domain.ServiceType(m.ServiceType),
		FromCityID:          derefString(m.FromCityID),
		ToCityID:            derefString(m.ToCityID),
		FromLocation:        m.FromLocation,
		ToLocation:          m.ToLocation,
		IsAirportTrip:       m.IsAirportTrip,
		CarType:             domain.CarType(m.CarType),
		TravelDate:          m.TravelDate,
		TravelTime:          m.TravelTime,
		EstimatedPrice:      m.EstimatedPrice,
		OriginalPrice:       m.OriginalPrice,
		PriceOverrideReason: derefString(m.PriceOverrideReason),
		PriceOverriddenAt:   m.PriceOverriddenAt,
		Status:              domain.BookingStatus(m.Status),
		CancellationReason:  derefString(m.CancellationReason),
		ConfirmedAt:         m.ConfirmedAt,
		CompletedAt:         m.CompletedAt,
		CancelledAt:         m.CancelledAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// Create stores a new booking; it always starts out pending.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Status = domain.BookingPending
	now := time.Now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now

	m := toBookingModel(b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translate(err, "booking", domain.ErrBookingNotFound)
	}
	*b = *m.toDomain()
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translate(err, "booking", domain.ErrBookingNotFound)
	}
	return m.toDomain(), nil
}

// List returns bookings newest first.
func (r *BookingRepository) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultBookingPageSize
	}
	if limit > maxBookingPageSize {
		limit = maxBookingPageSize
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&bookingModel{})
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", string(f.ServiceType))
	}

	var rows []bookingModel
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, translate(err, "booking", domain.ErrBookingNotFound)
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *m.toDomain())
	}
	return out, nil
}

// Transition moves a booking from -> to only if its stored status is still from.
// When the row no longer matches, the current booking is returned with the error.
func (r *BookingRepository) Transition(ctx context.Context, id string, from, to domain.BookingStatus, reason string) (*domain.Booking, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":     string(to),
		"updated_at": now,
	}
	switch to {
	case domain.BookingConfirmed:
		updates["confirmed_at"] = now
	case domain.BookingCompleted:
		updates["completed_at"] = now
	case domain.BookingCancelled:
		updates["cancelled_at"] = now
		if v := nullableString(reason); v != nil {
			updates["cancellation_reason"] = *v
		}
	}

	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if tx.Error != nil {
		return nil, translate(tx.Error, "booking", domain.ErrBookingNotFound)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.RowsAffected == 0 {
		return current, domain.ConflictError{Resource: "booking", Msg: "status changed concurrently", Err: domain.ErrStaleBooking}
	}
	return current, nil
}

// OverridePrice replaces the estimated price while keeping the first estimate in original_price.
func (r *BookingRepository) OverridePrice(ctx context.Context, id string, price float64, reason string) (*domain.Booking, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status IN ?", id, []string{string(domain.BookingPending), string(domain.BookingConfirmed)}).
		Updates(map[string]any{
			"original_price":        gorm.Expr("COALESCE(original_price, estimated_price)"),
			"estimated_price":       price,
			"price_override_reason": nullableString(reason),
			"price_overridden_at":   now,
			"updated_at":            now,
		})
	if tx.Error != nil {
		return nil, translate(tx.Error, "booking", domain.ErrBookingNotFound)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tx.RowsAffected == 0 {
		return current, domain.ConflictError{Resource: "booking", Msg: "booking is " + string(current.Status), Err: domain.ErrInvalidTransition}
	}
	return current, nil
}
