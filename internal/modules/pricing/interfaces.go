package pricing

import (
	"context"

	"cabbooking/internal/domain"
)

type CityRepository interface {
	Create(ctx context.Context, c *domain.City) error
	Resolve(ctx context.Context, idOrName string) (*domain.City, error)
}

type RouteRepository interface {
	List(ctx context.Context) ([]domain.Route, error)
	Upsert(ctx context.Context, r *domain.Route) (*domain.Route, error)
	Delete(ctx context.Context, id string) error
}

type ZonePricingRepository interface {
	GetActive(ctx context.Context) (*domain.ZonePricing, error)
	Replace(ctx context.Context, z domain.ZonePricing) (*domain.ZonePricing, error)
}
