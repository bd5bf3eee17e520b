// services/booking_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staybook-backend/models"
	"staybook-backend/utils"
)

// Notifier delivers the booking confirmation. Failures are logged and
// swallowed; they never fail the booking.
type Notifier func(booking *models.Booking) error

// BookingService owns the booking lifecycle: creation against concurrent
// requests, payment transitions, and the read projections.
type BookingService struct {
	DB       *gorm.DB
	Pricing  PricingCalculator
	Checkout CheckoutProvider
	Notify   Notifier

	// NotifyPaid fires after the unpaid->paid transition, carrying the paid
	// booking with relations preloaded. Best effort, same as Notify.
	NotifyPaid Notifier
}

func NewBookingService(db *gorm.DB, pricing PricingCalculator, checkout CheckoutProvider) *BookingService {
	return &BookingService{
		DB:       db,
		Pricing:  pricing,
		Checkout: checkout,
		Notify:   utils.SendBookingConfirmationEmail,
	}
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}

// lockForUpdate takes a row lock where the dialect supports it. SQLite has
// no FOR UPDATE syntax; its single-writer model serializes transactions
// instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// isDuplicateKey reports a unique index collision (MySQL error 1062).
func isDuplicateKey(err error) bool {
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique")
}

// Create validates the request, re-checks availability under a room row lock
// and persists the booking in unpaid state. The row lock lives in the
// database, so two overlapping create calls serialize even across service
// instances; the loser sees the winner's booking and fails with
// ErrRoomUnavailable.
func (s *BookingService) Create(userID uint, roomID uint, checkIn, checkOut string, guests int) (*models.Booking, error) {
	if guests < 1 {
		return nil, fmt.Errorf("%w: guests must be at least 1", ErrValidation)
	}
	in, out, err := ParseStayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	var bookingID uint
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := lockForUpdate(tx).First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to load room %d: %w", roomID, err)
		}

		n, err := countOverlapping(tx, roomID, in, out, 0)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrRoomUnavailable
		}

		nights, total, err := s.Pricing.Quote(room.PricePerNight, in, out)
		if err != nil {
			return err
		}

		booking := models.Booking{
			UserID:       userID,
			RoomID:       room.ID,
			HotelID:      room.HotelID,
			CheckInDate:  in,
			CheckOutDate: out,
			Guests:       guests,
			Nights:       nights,
			TotalPrice:   total,
			Status:       models.BookingStatusUnpaid,
		}

		// retry on reference code collision
		var createErr error
		for attempt := 0; attempt < 3; attempt++ {
			booking.ReferenceCode = newReferenceCode()
			createErr = tx.Create(&booking).Error
			if createErr == nil {
				break
			}
			if isDuplicateKey(createErr) {
				continue
			}
			return fmt.Errorf("failed to create booking: %w", createErr)
		}
		if createErr != nil {
			return fmt.Errorf("failed to create booking after retries: %w", createErr)
		}
		bookingID = booking.ID
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	var created models.Booking
	if err := s.DB.Preload("User").Preload("Room").Preload("Hotel").
		First(&created, bookingID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload booking %d: %w", bookingID, err)
	}

	if s.Notify != nil {
		if err := s.Notify(&created); err != nil {
			logrus.WithError(err).WithField("booking_id", created.ID).
				Warn("booking confirmation email failed")
		}
	}

	return &created, nil
}

// InitiatePayment builds a gateway checkout session for the booking's
// persisted total and returns the redirect URL.
func (s *BookingService) InitiatePayment(bookingID uint, userID uint) (string, error) {
	var booking models.Booking
	if err := s.DB.Preload("Room").Preload("Hotel").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrBookingNotFound
		}
		return "", fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}
	if booking.UserID != userID {
		return "", ErrNotBookingOwner
	}
	if booking.Status != models.BookingStatusUnpaid {
		return "", fmt.Errorf("%w: booking is %s", ErrBookingNotPayable, booking.Status)
	}

	url, err := s.Checkout.CreateCheckoutSession(&booking)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}
	return url, nil
}

// MarkPaid is the guarded unpaid->paid transition driven by the gateway
// webhook. Replays are no-ops. A cancelled booking that the gateway reports
// as paid is revived only while its date range is still free; once another
// guest has taken the range the booking stays cancelled and the call fails
// with ErrRangeRebooked, flagging the payment for a refund.
func (s *BookingService) MarkPaid(bookingID uint, paymentMethod string) error {
	var transitioned bool
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := lockForUpdate(tx).First(&booking, bookingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking %d: %w", bookingID, err)
		}

		if booking.Status == models.BookingStatusPaid {
			return nil
		}
		if booking.Status == models.BookingStatusCancelled {
			n, err := countOverlapping(tx, booking.RoomID, booking.CheckInDate, booking.CheckOutDate, booking.ID)
			if err != nil {
				return err
			}
			if n > 0 {
				logrus.WithFields(logrus.Fields{
					"booking_id": booking.ID,
					"room_id":    booking.RoomID,
				}).Error("payment confirmed for a cancelled booking whose range was rebooked; refund required")
				return fmt.Errorf("%w: booking %d", ErrRangeRebooked, booking.ID)
			}
			logrus.WithField("booking_id", booking.ID).
				Warn("payment confirmed for a cancelled booking; reviving it as paid")
		}

		if err := tx.Model(&booking).Updates(map[string]interface{}{
			"status":         models.BookingStatusPaid,
			"payment_method": paymentMethod,
		}).Error; err != nil {
			return fmt.Errorf("failed to mark booking %d paid: %w", bookingID, err)
		}
		transitioned = true
		return nil
	})
	if txErr != nil {
		return txErr
	}

	if transitioned && s.NotifyPaid != nil {
		var paid models.Booking
		if err := s.DB.Preload("User").Preload("Room").Preload("Hotel").
			First(&paid, bookingID).Error; err != nil {
			logrus.WithError(err).WithField("booking_id", bookingID).
				Warn("could not reload booking for the payment notification")
			return nil
		}
		if err := s.NotifyPaid(&paid); err != nil {
			logrus.WithError(err).WithField("booking_id", bookingID).
				Warn("payment receipt email failed")
		}
	}
	return nil
}

// ListForUser returns the caller's bookings, newest first.
func (s *BookingService) ListForUser(userID uint) ([]models.Booking, error) {
	var list []models.Booking
	if err := s.DB.
		Preload("Room").
		Preload("Hotel").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return list, nil
}

// DashboardData is the owner projection. Revenue counts paid bookings only.
type DashboardData struct {
	TotalBookings int              `json:"totalBookings"`
	TotalRevenue  int64            `json:"totalRevenue"`
	Bookings      []models.Booking `json:"bookings"`
}

// ListForHotelOwner aggregates bookings for the owner's hotel.
func (s *BookingService) ListForHotelOwner(ownerSubject string) (*DashboardData, error) {
	var hotel models.Hotel
	if err := s.DB.Where("owner_subject = ?", ownerSubject).First(&hotel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to load hotel for owner: %w", err)
	}

	var bookings []models.Booking
	if err := s.DB.
		Preload("Room").
		Preload("User").
		Where("hotel_id = ?", hotel.ID).
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotel bookings: %w", err)
	}

	data := &DashboardData{
		TotalBookings: len(bookings),
		Bookings:      bookings,
	}
	for _, b := range bookings {
		if b.IsPaid() {
			data.TotalRevenue += b.TotalPrice
		}
	}
	return data, nil
}

// GetForUser loads one booking and checks it belongs to the caller.
func (s *BookingService) GetForUser(bookingID uint, userID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("User").Preload("Room").Preload("Hotel").
		First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}
	if booking.UserID != userID {
		return nil, ErrNotBookingOwner
	}
	return &booking, nil
}

// ExpireStale cancels unpaid bookings created before the cutoff, releasing
// their date ranges. Returns the number of bookings cancelled.
func (s *BookingService) ExpireStale(cutoff time.Time) (int64, error) {
	res := s.DB.Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", models.BookingStatusUnpaid, cutoff).
		Update("status", models.BookingStatusCancelled)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire stale bookings: %w", res.Error)
	}
	return res.RowsAffected, nil
}
