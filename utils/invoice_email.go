package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"os"

	"github.com/sirupsen/logrus"

	"staybook-backend/models"
)

// SendInvoiceEmail mails the guest their invoice PDF once payment is
// confirmed. When SMTP env is not configured the send is logged instead, so
// local setups work without a mail server. Callers treat failures as
// non-fatal.
func SendInvoiceEmail(b *models.Booking, pdf []byte) error {
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
			"pdf_bytes": len(pdf),
		}).Info("[MOCK EMAIL] invoice")
		return nil
	}

	subject := fmt.Sprintf("Payment Received - %s", b.ReferenceCode)
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\n"+
			"We have received your payment for booking %s at %s.\r\n"+
			"Your invoice is attached.\r\n\r\n"+
			"Total: %s\r\n\r\n"+
			"We look forward to hosting you.\r\n",
		b.User.Username,
		b.ReferenceCode,
		b.Hotel.Name,
		FormatMinor(b.TotalPrice, currency),
	)

	const boundary = "staybook-mixed"
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", fromName, smtpUser)
	fmt.Fprintf(&msg, "To: %s\r\n", b.User.Email)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	fmt.Fprintf(&msg, "\r\n--%s\r\n", boundary)
	msg.WriteString("Content-Type: application/pdf\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&msg, "Content-Disposition: attachment; filename=%q\r\n\r\n",
		fmt.Sprintf("invoice-%s.pdf", b.ReferenceCode))
	writeBase64Wrapped(&msg, pdf)
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	auth := smtp.PlainAuth("", smtpUser, smtpPass, smtpHost)
	addr := fmt.Sprintf("%s:%s", smtpHost, smtpPort)
	if err := smtp.SendMail(addr, auth, smtpUser, []string{b.User.Email}, msg.Bytes()); err != nil {
		return fmt.Errorf("failed to send invoice email: %w", err)
	}
	return nil
}

// writeBase64Wrapped encodes data at the 76-character line length RFC 2045
// requires for base64 bodies.
func writeBase64Wrapped(buf *bytes.Buffer, data []byte) {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		buf.WriteString(enc[:76])
		buf.WriteString("\r\n")
		enc = enc[76:]
	}
	if enc != "" {
		buf.WriteString(enc)
		buf.WriteString("\r\n")
	}
}
