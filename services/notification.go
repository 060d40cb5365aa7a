package services

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/gomail.v2"

	"payments-dashboard/config"
	"payments-dashboard/logger"
	"payments-dashboard/models"
)

// NotificationService emails payment receipts to students. All sends are
// async and best-effort; a mail failure never affects payment processing.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// SendPaymentReceipt renders the receipt PDF and emails it to the student
func (n *NotificationService) SendPaymentReceipt(order *models.Order, status *models.OrderStatus) {
	go func() {
		pdf, err := BuildReceiptPDF(order, status)
		if err != nil {
			logger.Warn("Could not build receipt for %s: %v", order.ID, err)
			return
		}

		subject := fmt.Sprintf("Payment receipt for order %s", order.ID)
		body := fmt.Sprintf(
			"<p>Dear %s,</p><p>Your payment of %.2f has been received. The receipt is attached.</p>",
			order.StudentInfo.Name, status.OrderAmount)

		if err := sendMail(order.StudentInfo.Email, subject, body, pdf); err != nil {
			logger.Warn("Could not email receipt for %s to %s: %v", order.ID, order.StudentInfo.Email, err)
			return
		}
		logger.Info("Receipt for %s emailed to %s", order.ID, order.StudentInfo.Email)
	}()
}

func sendMail(to, subject, body string, attachment []byte) error {
	cfg := config.AppConfig

	from := cfg.EmailFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	if from == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return fmt.Errorf("smtp not configured (set SMTP_USER, SMTP_PASS and EMAIL_FROM)")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if len(attachment) > 0 {
		// Write to a temp file; gomail attaches from disk
		tmp, err := os.CreateTemp("", "receipt_*.pdf")
		if err != nil {
			return fmt.Errorf("create attachment temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(attachment); err != nil {
			tmp.Close()
			return fmt.Errorf("write attachment: %w", err)
		}
		tmp.Close()
		m.Attach(tmp.Name())
	}

	port := 587
	if p, err := strconv.Atoi(cfg.SMTPPort); err == nil {
		port = p
	}

	d := gomail.NewDialer(cfg.SMTPHost, port, cfg.SMTPUser, cfg.SMTPPass)
	return d.DialAndSend(m)
}
