package fare

import (
	"context"

	"cabbooking/internal/domain"
)

// CityRepository resolves a city by id or name.
type CityRepository interface {
	Resolve(ctx context.Context, idOrName string) (*domain.City, error)
	List(ctx context.Context) ([]domain.City, error)
}

// RouteRepository looks up the price row of an ordered city pair.
type RouteRepository interface {
	FindByPair(ctx context.Context, fromCityID, toCityID string) (*domain.Route, error)
}

// ZonePricingRepository reads the single active local rate table.
type ZonePricingRepository interface {
	GetActive(ctx context.Context) (*domain.ZonePricing, error)
}
