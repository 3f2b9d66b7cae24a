package fare

import (
	"context"
	"errors"
	"math"

	"cabbooking/internal/domain"
	"cabbooking/internal/metrics"
)

// Calculator prices trips from the route and zone tables. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	cities CityRepository
	routes RouteRepository
	zones  ZonePricingRepository
}

func NewCalculator(cities CityRepository, routes RouteRepository, zones ZonePricingRepository) *Calculator {
	return &Calculator{cities: cities, routes: routes, zones: zones}
}

// ComputeOutstationFare returns the route price of the exact ordered pair.
// The reverse direction is a different route.
func (c *Calculator) ComputeOutstationFare(ctx context.Context, fromCity, toCity string, car domain.CarType) (float64, error) {
	q, err := c.outstation(ctx, fromCity, toCity, car)
	if err != nil {
		return 0, err
	}
	return q.Price, nil
}

// ComputeLocalFare selects one of the four zone rates by (car, airport).
func (c *Calculator) ComputeLocalFare(ctx context.Context, car domain.CarType, isAirportTrip bool) (float64, error) {
	if _, err := domain.ParseCarType(string(car)); err != nil {
		return 0, err
	}

	z, err := c.zones.GetActive(ctx)
	if err != nil {
		return 0, err
	}
	rate, err := z.RateFor(car, isAirportTrip)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, domain.NotFoundError{Resource: "local pricing", Err: domain.ErrPricingUnavailable}
	}
	return round2(rate), nil
}

// Quote validates a trip request and prices it.
func (c *Calculator) Quote(ctx context.Context, req TripRequest) (q *Quote, err error) {
	st, err := domain.ParseServiceType(req.ServiceType)
	if err != nil {
		metrics.FareQuotes.WithLabelValues("unknown", "invalid").Inc()
		return nil, err
	}
	defer func() {
		metrics.FareQuotes.WithLabelValues(string(st), outcome(err)).Inc()
	}()

	car, err := domain.ParseCarType(req.CarType)
	if err != nil {
		return nil, err
	}

	switch st {
	case domain.ServiceOutstation:
		return c.outstation(ctx, req.FromCity, req.ToCity, car)
	default:
		price, err := c.ComputeLocalFare(ctx, car, req.IsAirportTrip)
		if err != nil {
			return nil, err
		}
		return &Quote{
			ServiceType:   domain.ServiceLocal,
			CarType:       car,
			IsAirportTrip: req.IsAirportTrip,
			Price:         price,
		}, nil
	}
}

func (c *Calculator) Cities(ctx context.Context) ([]domain.City, error) {
	return c.cities.List(ctx)
}

func (c *Calculator) outstation(ctx context.Context, fromCity, toCity string, car domain.CarType) (*Quote, error) {
	if _, err := domain.ParseCarType(string(car)); err != nil {
		return nil, err
	}

	from, err := c.resolve(ctx, fromCity)
	if err != nil {
		return nil, err
	}
	to, err := c.resolve(ctx, toCity)
	if err != nil {
		return nil, err
	}

	route, err := c.routes.FindByPair(ctx, from.ID, to.ID)
	if err != nil {
		return nil, err
	}
	price, err := route.PriceFor(car)
	if err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
	}

	return &Quote{
		ServiceType: domain.ServiceOutstation,
		CarType:     car,
		FromCityID:  from.ID,
		FromCity:    from.Name,
		ToCityID:    to.ID,
		ToCity:      to.Name,
		Price:       round2(price),
	}, nil
}

// resolve reports an unknown city as a missing route.
func (c *Calculator) resolve(ctx context.Context, idOrName string) (*domain.City, error) {
	city, err := c.cities.Resolve(ctx, idOrName)
	if err == nil {
		return city, nil
	}
	if errors.Is(err, domain.ErrCityNotFound) {
		return nil, domain.NotFoundError{Resource: "route", Err: domain.ErrRouteNotFound}
	}
	return nil, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsValidation(err):
		return "invalid"
	case domain.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
