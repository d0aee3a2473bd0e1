package reservation

import "errors"

var (
	ErrSlotFull            = errors.New("time slot is fully booked")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrInvalidDate         = errors.New("invalid reservation date")
	ErrInvalidTime         = errors.New("invalid reservation time")
	ErrInvalidPartySize    = errors.New("party size out of range")
	ErrInvalidStatus       = errors.New("invalid reservation status")
)
