package booking

import "cabbooking/internal/domain"

func invalidTransition(from, to domain.BookingStatus) error {
	return domain.ConflictError{
		Resource: "booking",
		Msg:      "cannot move booking from " + string(from) + " to " + string(to),
		Err:      domain.ErrInvalidTransition,
	}
}

func adminRequired() error {
	return domain.AuthError{Msg: "administrator session required", Err: domain.ErrUnauthorized}
}
