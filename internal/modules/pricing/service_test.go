package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabbooking/internal/database"
	"cabbooking/internal/domain"
	"cabbooking/internal/repository"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Connect(":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db))
	return NewService(
		repository.NewCityRepository(db),
		repository.NewRouteRepository(db),
		repository.NewZonePricingRepository(db),
		nil,
	)
}

func TestService_UpsertRouteByName(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.CreateCity(ctx, "Mumbai")
	require.NoError(t, err)
	_, err = svc.CreateCity(ctx, "Goa")
	require.NoError(t, err)

	r, err := svc.UpsertRoute(ctx, UpsertRouteRequest{FromCity: "mumbai", ToCity: "goa", Price4Seater: 9000.499, Price6Seater: 12000})
	require.NoError(t, err)
	assert.Equal(t, 9000.5, r.Price4Seater)
	assert.Equal(t, "Mumbai", r.FromCity)

	routes, err := svc.ListRoutes(ctx)
	require.NoError(t, err)
	assert.Len(t, routes, 1)

	require.NoError(t, svc.DeleteRoute(ctx, r.ID))
}

func TestService_UpsertRouteRejectsBadInput(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	_, err := svc.CreateCity(ctx, "Mumbai")
	require.NoError(t, err)

	_, err = svc.UpsertRoute(ctx, UpsertRouteRequest{FromCity: "Mumbai", ToCity: "Mumbai", Price4Seater: 10, Price6Seater: 10})
	assert.True(t, domain.IsValidation(err), "a route needs two distinct cities")

	_, err = svc.UpsertRoute(ctx, UpsertRouteRequest{FromCity: "Mumbai", ToCity: "Nowhere", Price4Seater: 10, Price6Seater: 10})
	assert.True(t, errors.Is(err, domain.ErrCityNotFound))

	_, err = svc.CreateCity(ctx, " Mumbai ")
	assert.True(t, domain.IsConflict(err))
}

func TestService_ReplaceLocalPricing(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.LocalPricing(ctx)
	assert.True(t, errors.Is(err, domain.ErrPricingUnavailable))

	_, err = svc.ReplaceLocalPricing(ctx, LocalPricingRequest{FourSeaterRate: 500, SixSeaterRate: 0, AirportFourSeaterRate: 900, AirportSixSeaterRate: 1200})
	assert.True(t, domain.IsValidation(err))

	z, err := svc.ReplaceLocalPricing(ctx, LocalPricingRequest{FourSeaterRate: 500, SixSeaterRate: 700, AirportFourSeaterRate: 900, AirportSixSeaterRate: 1200})
	require.NoError(t, err)
	assert.Equal(t, 700.0, z.SixSeaterRate)
}
