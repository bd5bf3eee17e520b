package services

import "errors"

// Sentinel errors returned by the service layer. Controllers translate these
// to HTTP status codes; anything else is an internal error and must not leak
// details to the caller.
var (
	ErrValidation          = errors.New("validation_failed")
	ErrRoomUnavailable     = errors.New("room_unavailable")
	ErrRoomNotFound        = errors.New("room_not_found")
	ErrBookingNotFound     = errors.New("booking_not_found")
	ErrBookingNotPayable   = errors.New("booking_not_payable")
	ErrRangeRebooked       = errors.New("booking_range_rebooked")
	ErrHotelNotFound       = errors.New("hotel_not_found")
	ErrHotelExists         = errors.New("hotel_already_registered")
	ErrPaymentGateway      = errors.New("payment_gateway_error")
	ErrInvoiceNotAvailable = errors.New("invoice_not_available")
	ErrNotBookingOwner     = errors.New("not_booking_owner")
	ErrNotRoomOwner        = errors.New("not_room_owner")
)
