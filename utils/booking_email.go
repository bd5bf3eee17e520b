package utils

import (
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"

	"staybook-backend/models"
)

// SendBookingConfirmationEmail sends the guest a plain-text confirmation.
// When SMTP env is not configured the message is logged instead, so local
// setups work without a mail server. Callers treat failures as non-fatal.
func SendBookingConfirmationEmail(b *models.Booking) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USERNAME")
	smtpPass := os.Getenv("SMTP_PASSWORD")
	fromName := EnvOrDefault("SMTP_FROM_NAME", "StayBook")

	currency := EnvOrDefault("CURRENCY", "usd")

	if b.User.Email == "" {
		return fmt.Errorf("booking %d has no recipient email", b.ID)
	}

	if smtpUser == "" || smtpPass == "" || smtpHost == "" || smtpPort == "" {
		logrus.WithFields(logrus.Fields{
			"to":        b.User.Email,
			"reference": b.ReferenceCode,
			"total":     FormatMinor(b.TotalPrice, currency),
		}).Info("[MOCK EMAIL] booking confirmation")
		return nil
	}

	subject := fmt.Sprintf("Booking Confirmed - %s", b.ReferenceCode)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"Your booking at %s is confirmed.\r\n\r\n"+
			"Reference: %s\r\n"+
			"Room: %s\r\n"+
			"Check-in: %s\r\n"+
			"Check-out: %s\r\n"+
			"Guests: %d\r\n"+
			"Total: %s\r\n\r\n"+
			"We look forward to hosting you.\r\n",
		b.User.Username,
		b.Hotel.Name,
		b.ReferenceCode,
		b.Room.RoomType,
		b.CheckInDate.Format("2006-01-02"),
		b.CheckOutDate.Format("2006-01-02"),
		b.Guests,
		FormatMinor(b.TotalPrice, currency),
	)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		fromName, smtpUser, b.User.Email, subject, body)

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	if err := smtp.SendMail(addr, auth, smtpUser, []string{b.User.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
