// controllers/booking_controller.go
package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staybook-backend/middleware"
	"staybook-backend/services"
	"staybook-backend/utils"
)

// ---------------------------
// Payloads
// ---------------------------

type CheckAvailabilityPayload struct {
	RoomID       uint   `json:"roomId" binding:"required"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
}

type CreateBookingPayload struct {
	RoomID       uint   `json:"roomId" binding:"required"`
	CheckInDate  string `json:"checkInDate" binding:"required"`
	CheckOutDate string `json:"checkOutDate" binding:"required"`
	Guests       int    `json:"guests" binding:"required"`
}

type StripePaymentPayload struct {
	BookingID uint `json:"bookingId" binding:"required"`
}

type BookingController struct {
	BookingSvc      *services.BookingService
	AvailabilitySvc *services.AvailabilityService
	InvoiceSvc      *services.InvoiceService
}

func NewBookingController(
	bookingSvc *services.BookingService,
	availabilitySvc *services.AvailabilityService,
	invoiceSvc *services.InvoiceService,
) *BookingController {
	return &BookingController{
		BookingSvc:      bookingSvc,
		AvailabilitySvc: availabilitySvc,
		InvoiceSvc:      invoiceSvc,
	}
}

// respondServiceError maps service sentinel errors to HTTP responses.
// Unexpected errors are logged and surfaced as a generic internal error.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRoomUnavailable):
		utils.JSONError(c, http.StatusConflict, "Room not available")
	case errors.Is(err, services.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, "Room not found")
	case errors.Is(err, services.ErrBookingNotFound):
		utils.JSONError(c, http.StatusNotFound, "Booking not found")
	case errors.Is(err, services.ErrBookingNotPayable):
		utils.JSONError(c, http.StatusConflict, "Booking is not awaiting payment")
	case errors.Is(err, services.ErrHotelNotFound):
		utils.JSONError(c, http.StatusNotFound, "Hotel not found")
	case errors.Is(err, services.ErrHotelExists):
		utils.JSONError(c, http.StatusConflict, "Hotel already registered")
	case errors.Is(err, services.ErrNotBookingOwner), errors.Is(err, services.ErrNotRoomOwner):
		utils.JSONError(c, http.StatusForbidden, "Not allowed")
	case errors.Is(err, services.ErrInvoiceNotAvailable):
		utils.JSONError(c, http.StatusConflict, "Invoice not available until the booking is paid")
	case errors.Is(err, services.ErrPaymentGateway):
		logrus.WithError(err).Error("payment gateway failure")
		utils.JSONError(c, http.StatusBadGateway, "Payment gateway error, please retry")
	default:
		logrus.WithError(err).Error("unexpected service error")
		utils.JSONError(c, http.StatusInternalServerError, "Server error")
	}
}

// CheckAvailability handles POST /api/bookings/check-availability.
// Unauthenticated; a client-side convenience only. Create repeats the check.
func (ctrl *BookingController) CheckAvailability(c *gin.Context) {
	var p CheckAvailabilityPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "roomId, checkInDate and checkOutDate are required")
		return
	}

	in, out, err := services.ParseStayRange(p.CheckInDate, p.CheckOutDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	available, err := ctrl.AvailabilitySvc.IsAvailable(p.RoomID, in, out)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"isAvailable": available})
}

// CreateBooking handles POST /api/bookings/book.
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var p CreateBookingPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "roomId, checkInDate, checkOutDate and guests are required")
		return
	}

	booking, err := ctrl.BookingSvc.Create(user.ID, p.RoomID, p.CheckInDate, p.CheckOutDate, p.Guests)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusCreated, gin.H{
		"message": "Booking created",
		"booking": booking,
	})
}

// GetUserBookings handles POST /api/bookings/user.
func (ctrl *BookingController) GetUserBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	bookings, err := ctrl.BookingSvc.ListForUser(user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"bookings": bookings})
}

// GetHotelBookings handles POST /api/bookings/hotel (owner dashboard).
func (ctrl *BookingController) GetHotelBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	data, err := ctrl.BookingSvc.ListForHotelOwner(user.SubjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"dashboardData": data})
}

// StripePayment handles POST /api/bookings/stripe-payment.
func (ctrl *BookingController) StripePayment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var p StripePaymentPayload
	if err := c.ShouldBindJSON(&p); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "bookingId is required")
		return
	}

	url, err := ctrl.BookingSvc.InitiatePayment(p.BookingID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{"url": url})
}

// DownloadInvoice handles GET /api/bookings/invoice/:bookingId, streaming
// the rendered PDF. Only the booking's guest may download it.
func (ctrl *BookingController) DownloadInvoice(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	id64, err := strconv.ParseUint(c.Param("bookingId"), 10, 32)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid booking id")
		return
	}
	bookingID := uint(id64)

	booking, err := ctrl.BookingSvc.GetForUser(bookingID, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	pdf, err := ctrl.InvoiceSvc.Generate(booking.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", booking.ReferenceCode))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
