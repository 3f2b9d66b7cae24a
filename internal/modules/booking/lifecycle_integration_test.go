package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabbooking/internal/database"
	"cabbooking/internal/domain"
	"cabbooking/internal/events"
	"cabbooking/internal/modules/fare"
	"cabbooking/internal/repository"
)

func TestLifecycle_OutstationBookingEndToEnd(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	cities := repository.NewCityRepository(db)
	routes := repository.NewRouteRepository(db)
	zones := repository.NewZonePricingRepository(db)
	customers := repository.NewCustomerRepository(db)
	bookings := repository.NewBookingRepository(db)

	a := &domain.City{Name: "City A"}
	b := &domain.City{Name: "City B"}
	require.NoError(t, cities.Create(ctx, a))
	require.NoError(t, cities.Create(ctx, b))
	_, err = routes.Upsert(ctx, &domain.Route{FromCityID: a.ID, ToCityID: b.ID, Price4Seater: 1500, Price6Seater: 2100})
	require.NoError(t, err)

	cust := &domain.Customer{Phone: "9999900000", PasswordHash: "x", Name: "Meera"}
	require.NoError(t, customers.Create(ctx, cust))

	svc := NewLifecycle(bookings, customers, fare.NewCalculator(cities, routes, zones), events.Nop{}, nil)

	created, err := svc.Create(ctx, CreateBookingInput{
		CustomerID:  cust.ID,
		ServiceType: "outstation",
		FromCity:    a.ID,
		ToCity:      b.ID,
		CarType:     "4-seater",
		TravelDate:  "2026-12-24",
		TravelTime:  "06:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 1500.0, created.EstimatedPrice)
	assert.Equal(t, domain.BookingPending, created.Status)

	confirmed, err := svc.Confirm(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)

	completed, err := svc.Complete(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	_, err = svc.Cancel(ctx, admin, created.ID, "too late")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))

	stored, err := bookings.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, stored.Status)
	assert.Equal(t, 1500.0, stored.EstimatedPrice)
	assert.Equal(t, "Meera", stored.CustomerName)
}

func TestLifecycle_LocalBookingWithoutZonePricingCreatesNothing(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))

	cities := repository.NewCityRepository(db)
	customers := repository.NewCustomerRepository(db)
	bookings := repository.NewBookingRepository(db)
	cust := &domain.Customer{Phone: "9999900001", PasswordHash: "x"}
	require.NoError(t, customers.Create(ctx, cust))

	calc := fare.NewCalculator(cities, repository.NewRouteRepository(db), repository.NewZonePricingRepository(db))
	svc := NewLifecycle(bookings, customers, calc, nil, nil)

	_, err = svc.Create(ctx, CreateBookingInput{
		CustomerID:   cust.ID,
		ServiceType:  "local",
		FromLocation: "Bandra",
		ToLocation:   "Colaba",
		CarType:      "6-seater",
		TravelDate:   "2026-12-24",
		TravelTime:   "18:45",
	})
	assert.True(t, errors.Is(err, domain.ErrPricingUnavailable))

	list, err := svc.List(ctx, admin, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
