package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransition(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled}
	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingCancelled}:   true,
		{BookingConfirmed, BookingCancelled}: true,
		{BookingConfirmed, BookingCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestBookingStatus_NothingReentersPending(t *testing.T) {
	for _, from := range []BookingStatus{BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled} {
		assert.False(t, from.CanTransition(BookingPending))
	}
}

func TestBookingStatus_UnknownSourceIsRejected(t *testing.T) {
	assert.False(t, BookingStatus("archived").CanTransition(BookingConfirmed))
}

func TestParseServiceType_LegacyAlias(t *testing.T) {
	st, err := ParseServiceType("mumbai-local")
	assert.NoError(t, err)
	assert.Equal(t, ServiceLocal, st)

	_, err = ParseServiceType("helicopter")
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, ErrUnsupportedService))
}

func TestParseCarType(t *testing.T) {
	ct, err := ParseCarType(" 6-Seater ")
	assert.NoError(t, err)
	assert.Equal(t, CarSixSeater, ct)

	_, err = ParseCarType("8-seater")
	assert.True(t, errors.Is(err, ErrUnsupportedCarType))
}

func TestZonePricing_RateFor(t *testing.T) {
	z := ZonePricing{FourSeaterRate: 500, SixSeaterRate: 700, AirportFourSeaterRate: 900, AirportSixSeaterRate: 1200}

	cases := []struct {
		car     CarType
		airport bool
		want    float64
	}{
		{CarFourSeater, false, 500},
		{CarSixSeater, false, 700},
		{CarFourSeater, true, 900},
		{CarSixSeater, true, 1200},
	}
	for _, tc := range cases {
		got, err := z.RateFor(tc.car, tc.airport)
		assert.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := z.RateFor(CarType("bus"), false)
	assert.True(t, errors.Is(err, ErrUnsupportedCarType))
}

func TestErrorKinds_WrapSentinels(t *testing.T) {
	err := NotFoundError{Resource: "route", Err: ErrRouteNotFound}
	assert.True(t, IsNotFound(err))
	assert.True(t, errors.Is(err, ErrRouteNotFound))
	assert.False(t, IsConflict(err))

	terr := TransientError{Op: "ping"}
	assert.True(t, IsTransient(terr))
	assert.True(t, errors.Is(terr, ErrUnavailable))
}
