package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"staybook-backend/models"
)

const stayDateLayout = "2006-01-02"

// ParseStayRange parses check-in/check-out strings into a half-open date
// interval. Accepts plain dates and RFC3339 timestamps (truncated to the
// day). Rejects ranges where check-in is not strictly before check-out.
func ParseStayRange(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := parseStayDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid check-in date %q", ErrValidation, checkIn)
	}
	out, err := parseStayDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid check-out date %q", ErrValidation, checkOut)
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-in must be before check-out", ErrValidation)
	}
	return in, out, nil
}

func parseStayDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(stayDateLayout, s, time.UTC); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// AvailabilityService answers date-overlap queries against stored bookings.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// IsAvailable reports whether no non-cancelled booking on the room overlaps
// [checkIn, checkOut). It is a point-in-time read; BookingService.Create
// repeats the check under a room row lock before inserting.
func (s *AvailabilityService) IsAvailable(roomID uint, checkIn, checkOut time.Time) (bool, error) {
	n, err := countOverlapping(s.DB, roomID, checkIn, checkOut, 0)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// countOverlapping counts non-cancelled bookings for the room whose interval
// overlaps [checkIn, checkOut). Two half-open intervals [A,B) and [C,D)
// overlap iff A < D and B > C; the strict comparison keeps back-to-back
// stays (checkout day equals the next check-in day) conflict free.
// A non-zero excludeID leaves that booking out of the count so a booking can
// be checked against everyone but itself.
func countOverlapping(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeID uint) (int64, error) {
	q := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status <> ?", models.BookingStatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count overlapping bookings: %w", err)
	}
	return n, nil
}
