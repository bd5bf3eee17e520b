package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook-backend/models"
)

func TestCreateBooking(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	assert.Equal(t, models.BookingStatusUnpaid, booking.Status)
	assert.Equal(t, 3, booking.Nights)
	assert.Equal(t, int64(30000), booking.TotalPrice)
	assert.Equal(t, room.ID, booking.RoomID)
	assert.Equal(t, hotel.ID, booking.HotelID, "hotel is denormalized from the room")
	assert.NotEmpty(t, booking.ReferenceCode)
	assert.Equal(t, "Seaside Inn", booking.Hotel.Name, "relations are preloaded on the result")
}

func TestCreateBookingValidation(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	tests := []struct {
		name     string
		roomID   uint
		checkIn  string
		checkOut string
		guests   int
		wantErr  error
	}{
		{name: "zero guests", roomID: room.ID, checkIn: "2025-01-01", checkOut: "2025-01-04", guests: 0, wantErr: ErrValidation},
		{name: "negative guests", roomID: room.ID, checkIn: "2025-01-01", checkOut: "2025-01-04", guests: -3, wantErr: ErrValidation},
		{name: "malformed check-in", roomID: room.ID, checkIn: "soon", checkOut: "2025-01-04", guests: 1, wantErr: ErrValidation},
		{name: "reversed range", roomID: room.ID, checkIn: "2025-01-04", checkOut: "2025-01-01", guests: 1, wantErr: ErrValidation},
		{name: "unknown room", roomID: 9999, checkIn: "2025-01-01", checkOut: "2025-01-04", guests: 1, wantErr: ErrRoomNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(guest.ID, tt.roomID, tt.checkIn, tt.checkOut, tt.guests)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// none of the rejected requests may have written a row
	var n int64
	require.NoError(t, db.Model(&models.Booking{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateBookingConflicts(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	other := seedUser(t, db, "sub_other", "other@example.com", "Other")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	_, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	// sub-interval of the existing stay
	_, err = svc.Create(other.ID, room.ID, "2025-01-02", "2025-01-03", 1)
	require.ErrorIs(t, err, ErrRoomUnavailable)

	// back-to-back stay on the checkout day is fine
	followOn, err := svc.Create(other.ID, room.ID, "2025-01-04", "2025-01-05", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), followOn.TotalPrice)
}

func TestCreateBookingConcurrent(t *testing.T) {
	db := newTestDB(t)
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	const callers = 8
	users := make([]*models.User, callers)
	for i := range users {
		users[i] = seedUser(t, db, "sub_"+string(rune('a'+i)), "c@example.com", "C")
	}

	var wg sync.WaitGroup
	results := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Create(users[i].ID, room.ID, "2025-05-01", "2025-05-04", 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrRoomUnavailable)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent create may win")

	var n int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("room_id = ? AND status <> ?", room.ID, models.BookingStatusCancelled).
		Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCreateBookingNotifyFailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)

	svc := newBookingService(db)
	notified := false
	svc.Notify = func(b *models.Booking) error {
		notified = true
		return errors.New("smtp down")
	}

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-02", 1)
	require.NoError(t, err, "notification failure must not fail the booking")
	assert.True(t, notified)
	assert.Equal(t, models.BookingStatusUnpaid, booking.Status)
}

func TestMarkPaidIdempotent(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"))
	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"), "replaying the confirmation must be a no-op")

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPaid, reloaded.Status)
	assert.Equal(t, "stripe", reloaded.PaymentMethod)
	assert.Equal(t, int64(30000), reloaded.TotalPrice, "total is immutable once set")
}

func TestMarkPaidRevivesCancelledWhenRangeFree(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	n, err := svc.ExpireStale(day("2030-01-01"))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// nobody rebooked the range, so the late confirmation still lands
	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"))

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPaid, reloaded.Status)
}

func TestMarkPaidKeepsCancelledWhenRangeRebooked(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	other := seedUser(t, db, "sub_other", "other@example.com", "Other")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	abandoned, err := svc.Create(guest.ID, room.ID, "2025-03-01", "2025-03-04", 2)
	require.NoError(t, err)

	n, err := svc.ExpireStale(day("2030-01-01"))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	// the freed range is taken by another guest before the webhook arrives
	taken, err := svc.Create(other.ID, room.ID, "2025-03-02", "2025-03-05", 1)
	require.NoError(t, err)

	err = svc.MarkPaid(abandoned.ID, "stripe")
	require.ErrorIs(t, err, ErrRangeRebooked)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, abandoned.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, reloaded.Status, "a rebooked range must not be revived")

	// at most one non-cancelled booking may cover the range
	var overlapping int64
	require.NoError(t, db.Model(&models.Booking{}).
		Where("room_id = ? AND status <> ?", room.ID, models.BookingStatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", day("2025-03-04"), day("2025-03-01")).
		Count(&overlapping).Error)
	assert.EqualValues(t, 1, overlapping)

	// the new booking's own confirmation is unaffected
	require.NoError(t, svc.MarkPaid(taken.ID, "stripe"))
}

func TestMarkPaidSendsInvoiceNotification(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	var got []*models.Booking
	svc.NotifyPaid = func(b *models.Booking) error {
		got = append(got, b)
		return nil
	}

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"))
	require.Len(t, got, 1)
	assert.Equal(t, models.BookingStatusPaid, got[0].Status)
	assert.Equal(t, "Seaside Inn", got[0].Hotel.Name, "relations are preloaded for the notification")

	// a replayed confirmation must not resend the invoice
	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"))
	assert.Len(t, got, 1)
}

func TestMarkPaidNotifyFailureIsSwallowed(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)
	svc.NotifyPaid = func(b *models.Booking) error {
		return errors.New("smtp down")
	}

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-02", 1)
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(booking.ID, "stripe"), "notification failure must not fail the transition")

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, booking.ID).Error)
	assert.Equal(t, models.BookingStatusPaid, reloaded.Status)
}

func TestMarkPaidUnknownBooking(t *testing.T) {
	db := newTestDB(t)
	svc := newBookingService(db)
	require.ErrorIs(t, svc.MarkPaid(12345, "stripe"), ErrBookingNotFound)
}

type stubCheckout struct {
	calls int
	url   string
}

func (s *stubCheckout) CreateCheckoutSession(b *models.Booking) (string, error) {
	s.calls++
	return s.url, nil
}

func TestInitiatePaymentRequiresUnpaid(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	other := seedUser(t, db, "sub_other", "other@example.com", "Other")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)

	svc := newBookingService(db)
	checkout := &stubCheckout{url: "https://pay.example/session"}
	svc.Checkout = checkout

	alreadyPaid, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(alreadyPaid.ID, "stripe"))

	expired, err := svc.Create(guest.ID, room.ID, "2025-02-01", "2025-02-03", 1)
	require.NoError(t, err)
	_, err = svc.ExpireStale(day("2030-01-01"))
	require.NoError(t, err)

	// no checkout session for a booking that is already paid or cancelled
	_, err = svc.InitiatePayment(alreadyPaid.ID, guest.ID)
	require.ErrorIs(t, err, ErrBookingNotPayable)
	_, err = svc.InitiatePayment(expired.ID, guest.ID)
	require.ErrorIs(t, err, ErrBookingNotPayable)
	assert.Zero(t, checkout.calls, "the gateway must not be called for non-payable bookings")

	open, err := svc.Create(guest.ID, room.ID, "2025-03-01", "2025-03-03", 1)
	require.NoError(t, err)

	_, err = svc.InitiatePayment(open.ID, other.ID)
	require.ErrorIs(t, err, ErrNotBookingOwner)

	url, err := svc.InitiatePayment(open.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session", url)
	assert.Equal(t, 1, checkout.calls)
}

func TestListForUser(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	other := seedUser(t, db, "sub_other", "other@example.com", "Other")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	_, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)
	_, err = svc.Create(other.ID, room.ID, "2025-01-10", "2025-01-12", 1)
	require.NoError(t, err)

	mine, err := svc.ListForUser(guest.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, guest.ID, mine[0].UserID)
	assert.Equal(t, "Deluxe", mine[0].Room.RoomType)
}

func TestOwnerDashboardRevenue(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	paid, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2) // 30000
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(paid.ID, "stripe"))

	_, err = svc.Create(guest.ID, room.ID, "2025-02-01", "2025-02-03", 2) // 20000, unpaid
	require.NoError(t, err)

	data, err := svc.ListForHotelOwner("sub_owner")
	require.NoError(t, err)
	assert.Equal(t, 2, data.TotalBookings)
	assert.Equal(t, int64(30000), data.TotalRevenue, "unpaid bookings contribute zero revenue")

	_, err = svc.ListForHotelOwner("sub_nobody")
	require.ErrorIs(t, err, ErrHotelNotFound)
}

func TestExpireStaleReleasesRange(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	abandoned, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	paid, err := svc.Create(guest.ID, room.ID, "2025-02-01", "2025-02-04", 2)
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(paid.ID, "stripe"))

	// cutoff in the future: every unpaid booking is stale
	n, err := svc.ExpireStale(day("2030-01-01"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "only unpaid bookings are swept")

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, abandoned.ID).Error)
	assert.Equal(t, models.BookingStatusCancelled, reloaded.Status)

	reloaded = models.Booking{}
	require.NoError(t, db.First(&reloaded, paid.ID).Error)
	assert.Equal(t, models.BookingStatusPaid, reloaded.Status)

	// the cancelled range is bookable again
	_, err = svc.Create(guest.ID, room.ID, "2025-01-02", "2025-01-03", 1)
	require.NoError(t, err)
}

func TestGetForUser(t *testing.T) {
	db := newTestDB(t)
	guest := seedUser(t, db, "sub_guest", "guest@example.com", "Guest")
	other := seedUser(t, db, "sub_other", "other@example.com", "Other")
	hotel := seedHotel(t, db, "sub_owner")
	room := seedRoom(t, db, hotel.ID, 10000)
	svc := newBookingService(db)

	booking, err := svc.Create(guest.ID, room.ID, "2025-01-01", "2025-01-04", 2)
	require.NoError(t, err)

	got, err := svc.GetForUser(booking.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = svc.GetForUser(booking.ID, other.ID)
	require.ErrorIs(t, err, ErrNotBookingOwner)

	_, err = svc.GetForUser(99999, guest.ID)
	require.ErrorIs(t, err, ErrBookingNotFound)
}
