package pricing

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"cabbooking/internal/domain"
	"cabbooking/internal/pkg/validator"
)

// Service is the write side of the rate tables.
type Service struct {
	cities CityRepository
	routes RouteRepository
	zones  ZonePricingRepository
	log    *zap.Logger
}

func NewService(cities CityRepository, routes RouteRepository, zones ZonePricingRepository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cities: cities, routes: routes, zones: zones, log: log}
}

func (s *Service) CreateCity(ctx context.Context, name string) (*domain.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ValidationError{Field: "name", Msg: "city name is required"}
	}
	c := &domain.City{Name: name}
	if err := s.cities.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("city created", zap.String("city_id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *Service) ListRoutes(ctx context.Context) ([]domain.Route, error) {
	return s.routes.List(ctx)
}

func (s *Service) UpsertRoute(ctx context.Context, req UpsertRouteRequest) (*domain.Route, error) {
	from, err := s.cities.Resolve(ctx, req.FromCity)
	if err != nil {
		return nil, err
	}
	to, err := s.cities.Resolve(ctx, req.ToCity)
	if err != nil {
		return nil, err
	}

	r := &domain.Route{
		FromCityID:   from.ID,
		ToCityID:     to.ID,
		Price4Seater: round2(req.Price4Seater),
		Price6Seater: round2(req.Price6Seater),
	}
	if err := validator.Check(r); err != nil {
		return nil, err
	}

	saved, err := s.routes.Upsert(ctx, r)
	if err != nil {
		return nil, err
	}
	s.log.Info("route saved",
		zap.String("route_id", saved.ID),
		zap.String("from", from.Name),
		zap.String("to", to.Name),
	)
	return saved, nil
}

func (s *Service) DeleteRoute(ctx context.Context, id string) error {
	if err := s.routes.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("route deleted", zap.String("route_id", id))
	return nil
}

func (s *Service) LocalPricing(ctx context.Context) (*domain.ZonePricing, error) {
	return s.zones.GetActive(ctx)
}

// ReplaceLocalPricing swaps the active rate table in one write.
func (s *Service) ReplaceLocalPricing(ctx context.Context, req LocalPricingRequest) (*domain.ZonePricing, error) {
	z := domain.ZonePricing{
		FourSeaterRate:        round2(req.FourSeaterRate),
		SixSeaterRate:         round2(req.SixSeaterRate),
		AirportFourSeaterRate: round2(req.AirportFourSeaterRate),
		AirportSixSeaterRate:  round2(req.AirportSixSeaterRate),
	}
	if err := validator.Check(z); err != nil {
		return nil, err
	}

	saved, err := s.zones.Replace(ctx, z)
	if err != nil {
		return nil, err
	}
	s.log.Info("local pricing replaced")
	return saved, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
