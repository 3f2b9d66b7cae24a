package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cabbooking/internal/database"
	"cabbooking/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedCities(t *testing.T, repo *CityRepository, names ...string) []domain.City {
	t.Helper()
	out := make([]domain.City, 0, len(names))
	for _, n := range names {
		c := domain.City{Name: n}
		require.NoError(t, repo.Create(context.Background(), &c))
		out = append(out, c)
	}
	return out
}

func TestCityRepository_ResolveByIDOrName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCityRepository(db)
	cities := seedCities(t, repo, "Mumbai", "Pune")

	byID, err := repo.Resolve(context.Background(), cities[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Pune", byID.Name)

	byName, err := repo.Resolve(context.Background(), "  mumbai ")
	require.NoError(t, err)
	assert.Equal(t, cities[0].ID, byName.ID)

	_, err = repo.Resolve(context.Background(), "Atlantis")
	assert.True(t, domain.IsNotFound(err))
	assert.True(t, errors.Is(err, domain.ErrCityNotFound))
}

func TestCityRepository_DuplicateNameIsConflict(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCityRepository(db)
	seedCities(t, repo, "Nashik")

	err := repo.Create(context.Background(), &domain.City{Name: "Nashik"})
	assert.True(t, domain.IsConflict(err))
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestRouteRepository_PairIsDirectional(t *testing.T) {
	db := setupTestDB(t)
	cities := seedCities(t, NewCityRepository(db), "Mumbai", "Pune")
	repo := NewRouteRepository(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, &domain.Route{
		FromCityID: cities[0].ID, ToCityID: cities[1].ID,
		Price4Seater: 2500, Price6Seater: 3500,
	})
	require.NoError(t, err)

	got, err := repo.FindByPair(ctx, cities[0].ID, cities[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", got.FromCity)
	assert.Equal(t, "Pune", got.ToCity)
	assert.Equal(t, 2500.0, got.Price4Seater)

	_, err = repo.FindByPair(ctx, cities[1].ID, cities[0].ID)
	assert.True(t, errors.Is(err, domain.ErrRouteNotFound))
}

func TestRouteRepository_UpsertReplacesPrices(t *testing.T) {
	db := setupTestDB(t)
	cities := seedCities(t, NewCityRepository(db), "Mumbai", "Nashik")
	repo := NewRouteRepository(db)
	ctx := context.Background()

	first, err := repo.Upsert(ctx, &domain.Route{FromCityID: cities[0].ID, ToCityID: cities[1].ID, Price4Seater: 3000, Price6Seater: 4000})
	require.NoError(t, err)
	second, err := repo.Upsert(ctx, &domain.Route{FromCityID: cities[0].ID, ToCityID: cities[1].ID, Price4Seater: 3200, Price6Seater: 4100})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3200.0, second.Price4Seater)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.True(t, domain.IsNotFound(repo.Delete(ctx, first.ID)))
}

func TestZonePricingRepository_MissingThenReplaced(t *testing.T) {
	db := setupTestDB(t)
	repo := NewZonePricingRepository(db)
	ctx := context.Background()

	_, err := repo.GetActive(ctx)
	assert.True(t, errors.Is(err, domain.ErrPricingUnavailable))

	_, err = repo.Replace(ctx, domain.ZonePricing{FourSeaterRate: 500, SixSeaterRate: 700, AirportFourSeaterRate: 900, AirportSixSeaterRate: 1200})
	require.NoError(t, err)
	got, err := repo.Replace(ctx, domain.ZonePricing{FourSeaterRate: 550, SixSeaterRate: 750, AirportFourSeaterRate: 950, AirportSixSeaterRate: 1250})
	require.NoError(t, err)
	assert.Equal(t, 550.0, got.FourSeaterRate)

	var count int64
	require.NoError(t, db.Model(&zonePricingModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func newPendingBooking(t *testing.T, repo *BookingRepository) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		CustomerID:     "cust-1",
		CustomerName:   "Asha",
		CustomerPhone:  "9876543210",
		ServiceType:    domain.ServiceLocal,
		FromLocation:   "Andheri",
		ToLocation:     "Airport T2",
		IsAirportTrip:  true,
		CarType:        domain.CarFourSeater,
		TravelDate:     "2026-11-01",
		TravelTime:     "09:30",
		EstimatedPrice: 900,
	}
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestBookingRepository_CreateStartsPending(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	b := newPendingBooking(t, repo)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)

	got, err := repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Airport T2", got.ToLocation)
	assert.True(t, got.IsAirportTrip)
}

func TestBookingRepository_TransitionIsConditional(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()
	b := newPendingBooking(t, repo)

	confirmed, err := repo.Transition(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)
	assert.NotNil(t, confirmed.ConfirmedAt)

	// a second writer still believing the booking is pending loses
	current, err := repo.Transition(ctx, b.ID, domain.BookingPending, domain.BookingCancelled, "customer request")
	assert.True(t, errors.Is(err, domain.ErrStaleBooking))
	require.NotNil(t, current)
	assert.Equal(t, domain.BookingConfirmed, current.Status)
	assert.Nil(t, current.CancelledAt)

	_, err = repo.Transition(ctx, "missing", domain.BookingPending, domain.BookingConfirmed, "")
	assert.True(t, errors.Is(err, domain.ErrBookingNotFound))
}

func TestBookingRepository_OverridePriceKeepsOriginal(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()
	b := newPendingBooking(t, repo)

	got, err := repo.OverridePrice(ctx, b.ID, 800, "loyal customer")
	require.NoError(t, err)
	assert.Equal(t, 800.0, got.EstimatedPrice)
	require.NotNil(t, got.OriginalPrice)
	assert.Equal(t, 900.0, *got.OriginalPrice)

	got, err = repo.OverridePrice(ctx, b.ID, 750, "second thoughts")
	require.NoError(t, err)
	assert.Equal(t, 750.0, got.EstimatedPrice)
	assert.Equal(t, 900.0, *got.OriginalPrice)
	assert.Equal(t, "second thoughts", got.PriceOverrideReason)

	_, err = repo.Transition(ctx, b.ID, domain.BookingPending, domain.BookingCancelled, "")
	require.NoError(t, err)
	_, err = repo.OverridePrice(ctx, b.ID, 700, "")
	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
}

func TestBookingRepository_ListFiltersAndCaps(t *testing.T) {
	repo := NewBookingRepository(setupTestDB(t))
	ctx := context.Background()
	first := newPendingBooking(t, repo)
	newPendingBooking(t, repo)
	_, err := repo.Transition(ctx, first.ID, domain.BookingPending, domain.BookingConfirmed, "")
	require.NoError(t, err)

	pending, err := repo.List(ctx, domain.BookingFilter{Status: domain.BookingPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	all, err := repo.List(ctx, domain.BookingFilter{Limit: 10000})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAdminUserRepository_LockoutAfterFailures(t *testing.T) {
	repo := NewAdminUserRepository(setupTestDB(t))
	ctx := context.Background()
	u := &domain.AdminUser{Email: "Ops@Example.com ", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, u))
	assert.Equal(t, "ops@example.com", u.Email)

	for i := 0; i < 4; i++ {
		locked, err := repo.RecordFailedLogin(ctx, u.ID, 5, 15*time.Minute)
		require.NoError(t, err)
		assert.False(t, locked)
	}
	locked, err := repo.RecordFailedLogin(ctx, u.ID, 5, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)

	got, err := repo.GetByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	require.NotNil(t, got.LockedUntil)
	assert.True(t, got.LockedUntil.After(time.Now()))

	require.NoError(t, repo.ResetFailedLogins(ctx, u.ID))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedUntil)
	assert.Zero(t, got.FailedLoginAttempts)
}

func TestRefreshTokenRepository_FamilyLifecycle(t *testing.T) {
	repo := NewRefreshTokenRepository(setupTestDB(t))
	ctx := context.Background()
	exp := time.Now().UTC().Add(time.Hour)

	a := &domain.RefreshToken{UserID: "u1", TokenHash: "h-a", FamilyID: "fam-a", Purpose: domain.PurposeLogin, ExpiresAt: exp}
	b := &domain.RefreshToken{UserID: "u1", TokenHash: "h-b", FamilyID: "fam-b", Purpose: domain.PurposeLogin, ExpiresAt: exp}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	ok, err := repo.MarkUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkUsed(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok, "a token can be claimed once")

	revoked, err := repo.RevokeOtherFamilies(ctx, "u1", "fam-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"fam-b"}, revoked)

	active, err := repo.FamilyActive(ctx, "fam-b")
	require.NoError(t, err)
	assert.False(t, active)
	active, err = repo.FamilyActive(ctx, "fam-a")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = repo.GetByHash(ctx, "nope")
	assert.True(t, errors.Is(err, domain.ErrInvalidRefreshToken))

	n, err := repo.Purge(ctx, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the revoked family is past the cutoff")

	n, err = repo.Purge(ctx, exp.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
