package domain

import "time"

type City struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Route prices one direction of a city pair.
type Route struct {
	ID           string    `json:"id"`
	FromCityID   string    `json:"from_city_id" validate:"required"`
	ToCityID     string    `json:"to_city_id" validate:"required,nefield=FromCityID"`
	FromCity     string    `json:"from_city,omitempty"`
	ToCity       string    `json:"to_city,omitempty"`
	Price4Seater float64   `json:"price_4_seater" validate:"required,gt=0"`
	Price6Seater float64   `json:"price_6_seater" validate:"required,gt=0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r Route) PriceFor(car CarType) (float64, error) {
	switch car {
	case CarFourSeater:
		return r.Price4Seater, nil
	case CarSixSeater:
		return r.Price6Seater, nil
	default:
		return 0, ValidationError{Field: "car_type", Msg: "unsupported car type", Err: ErrUnsupportedCarType}
	}
}

// ZonePricing is the single active local rate table.
type ZonePricing struct {
	FourSeaterRate        float64   `json:"four_seater_rate" validate:"required,gt=0"`
	SixSeaterRate         float64   `json:"six_seater_rate" validate:"required,gt=0"`
	AirportFourSeaterRate float64   `json:"airport_four_seater_rate" validate:"required,gt=0"`
	AirportSixSeaterRate  float64   `json:"airport_six_seater_rate" validate:"required,gt=0"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (z ZonePricing) RateFor(car CarType, airport bool) (float64, error) {
	switch car {
	case CarFourSeater:
		if airport {
			return z.AirportFourSeaterRate, nil
		}
		return z.FourSeaterRate, nil
	case CarSixSeater:
		if airport {
			return z.AirportSixSeaterRate, nil
		}
		return z.SixSeaterRate, nil
	default:
		return 0, ValidationError{Field: "car_type", Msg: "unsupported car type", Err: ErrUnsupportedCarType}
	}
}
