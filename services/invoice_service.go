package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"staybook-backend/models"
	"staybook-backend/utils"
)

// InvoiceService renders a printable invoice for a paid booking. The render
// is a pure derivation from stored fields, safe to repeat any number of
// times; the creation date is pinned to the booking's payment timestamp so
// repeated renders are byte-identical.
type InvoiceService struct {
	DB       *gorm.DB
	Currency string
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{
		DB:       db,
		Currency: utils.EnvOrDefault("CURRENCY", "usd"),
	}
}

// Generate loads the booking and renders the PDF. Unpaid or cancelled
// bookings fail with ErrInvoiceNotAvailable.
func (s *InvoiceService) Generate(bookingID uint) ([]byte, error) {
	var booking models.Booking
	if err := s.DB.Preload("User").Preload("Room").Preload("Hotel").
		First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to load booking %d: %w", bookingID, err)
	}
	if !booking.IsPaid() {
		return nil, ErrInvoiceNotAvailable
	}
	return s.render(&booking)
}

func (s *InvoiceService) render(b *models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(b.UpdatedAt.UTC())
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 12, fmt.Sprintf("%s Invoice", b.Hotel.Name), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, fmt.Sprintf("Invoice ID: %s", b.ReferenceCode), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Date: %s", b.UpdatedAt.UTC().Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "Billed To:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, b.User.Username, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, b.User.Email, "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Booking Details", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, fmt.Sprintf("Hotel: %s, %s", b.Hotel.Name, b.Hotel.City), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Room Type: %s", b.Room.RoomType), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Check-in: %s", b.CheckInDate.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Check-out: %s", b.CheckOutDate.Format("2006-01-02")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Guests: %d", b.Guests), "", 1, "L", false, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Payment Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Amount: %s", utils.FormatMinor(b.TotalPrice, s.Currency)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(22, 163, 74)
	pdf.CellFormat(0, 6, "Payment Status: Paid", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
