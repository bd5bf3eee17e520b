package workers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"staybook-backend/services"
)

// ExpiryWorker periodically cancels unpaid bookings whose checkout was
// abandoned, so a stale pending booking cannot hold a date range forever.
type ExpiryWorker struct {
	bookingSvc *services.BookingService
	interval   time.Duration
	ttl        time.Duration
}

func NewExpiryWorker(bookingSvc *services.BookingService, interval, ttl time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		bookingSvc: bookingSvc,
		interval:   interval,
		ttl:        ttl,
	}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.WithFields(logrus.Fields{
		"interval": w.interval,
		"ttl":      w.ttl,
	}).Info("booking expiry worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("booking expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *ExpiryWorker) sweep() {
	cutoff := time.Now().Add(-w.ttl)
	n, err := w.bookingSvc.ExpireStale(cutoff)
	if err != nil {
		logrus.WithError(err).Error("expiry sweep failed")
		return
	}
	if n > 0 {
		logrus.WithField("cancelled", n).Info("expired stale unpaid bookings")
	}
}
