package services

import (
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"staybook-backend/models"
	"staybook-backend/utils"
)

// CheckoutProvider abstracts the hosted payment gateway. The booking id rides
// along as correlation metadata and comes back on the webhook.
type CheckoutProvider interface {
	CreateCheckoutSession(booking *models.Booking) (string, error)
}

// StripeCheckout creates Stripe-hosted checkout sessions for bookings.
type StripeCheckout struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

// NewStripeCheckoutFromEnv configures the global Stripe client from
// STRIPE_SECRET_KEY and reads redirect URLs from the environment.
func NewStripeCheckoutFromEnv() *StripeCheckout {
	stripe.Key = utils.EnvOrDefault("STRIPE_SECRET_KEY", "")
	frontend := utils.EnvOrDefault("FRONTEND_URL", "http://localhost:3000")
	return &StripeCheckout{
		Currency:   utils.EnvOrDefault("CURRENCY", "usd"),
		SuccessURL: frontend + "/my-bookings?payment=success",
		CancelURL:  frontend + "/my-bookings?payment=cancelled",
	}
}

func (sc *StripeCheckout) CreateCheckoutSession(booking *models.Booking) (string, error) {
	name := fmt.Sprintf("%s - %s", booking.Hotel.Name, booking.Room.RoomType)

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(sc.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(name),
					},
					// The persisted booking total, already in minor units.
					UnitAmount: stripe.Int64(booking.TotalPrice),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(sc.SuccessURL),
		CancelURL:  stripe.String(sc.CancelURL),
	}
	params.AddMetadata("bookingId", strconv.FormatUint(uint64(booking.ID), 10))

	s, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return s.URL, nil
}
