package services

import (
	"fmt"
	"time"

	"staybook-backend/utils"
)

// PricingCalculator prices a candidate stay. All amounts are int64 minor
// currency units; the optional service fee is an integer percentage applied
// to the subtotal and rounded half up.
type PricingCalculator struct {
	ServiceFeePercent int64
}

// NewPricingCalculatorFromEnv reads SERVICE_FEE_PERCENT (default 0).
func NewPricingCalculatorFromEnv() PricingCalculator {
	return PricingCalculator{
		ServiceFeePercent: utils.EnvInt64("SERVICE_FEE_PERCENT", 0),
	}
}

// Nights returns the number of whole nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn).Hours() / 24)
}

// Quote computes nights and the total to persist for the stay. The same
// total is later shown to the guest and charged at the gateway.
func (p PricingCalculator) Quote(pricePerNight int64, checkIn, checkOut time.Time) (int, int64, error) {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return 0, 0, fmt.Errorf("%w: stay must cover at least one night", ErrValidation)
	}
	if pricePerNight <= 0 {
		return 0, 0, fmt.Errorf("%w: room has no positive nightly price", ErrValidation)
	}

	subtotal := int64(nights) * pricePerNight
	total := subtotal + (subtotal*p.ServiceFeePercent+50)/100
	return nights, total, nil
}
