package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"staybook-backend/services"
)

const paymentMethodStripe = "stripe"

// WebhookController receives asynchronous gateway callbacks. Signature
// failures are rejected at this boundary; malformed or irrelevant events are
// acknowledged without retrying, since gateway retries could duplicate side
// effects.
type WebhookController struct {
	BookingSvc *services.BookingService

	// constructEvent verifies the payload signature; swapped in tests.
	constructEvent func(payload []byte, sigHeader string) (stripe.Event, error)
}

func NewWebhookController(bookingSvc *services.BookingService) *WebhookController {
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	return &WebhookController{
		BookingSvc: bookingSvc,
		constructEvent: func(payload []byte, sigHeader string) (stripe.Event, error) {
			return webhook.ConstructEvent(payload, sigHeader, secret)
		},
	}
}

// HandleStripe handles POST /api/webhooks/stripe.
func (ctrl *WebhookController) HandleStripe(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := ctrl.constructEvent(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logrus.WithError(err).Warn("stripe webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if event.Type != "checkout.session.completed" {
		logrus.WithField("type", event.Type).Debug("ignoring unhandled stripe event")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		logrus.WithError(err).Warn("failed to decode checkout session payload")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	raw, ok := session.Metadata["bookingId"]
	if !ok || raw == "" {
		logrus.Warn("checkout session completed without bookingId metadata")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	id64, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		logrus.WithField("bookingId", raw).Warn("non-numeric bookingId in session metadata")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := ctrl.BookingSvc.MarkPaid(uint(id64), paymentMethodStripe); err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			logrus.WithField("booking_id", id64).Warn("payment confirmed for unknown booking")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if errors.Is(err, services.ErrRangeRebooked) {
			// Acknowledged: the booking stays cancelled and a retry cannot
			// change that. The refund is flagged in the service log.
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		logrus.WithError(err).WithField("booking_id", id64).Error("failed to apply payment confirmation")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	logrus.WithField("booking_id", id64).Info("payment confirmed")
	c.JSON(http.StatusOK, gin.H{"received": true})
}
