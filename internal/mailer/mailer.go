package mailer

import (
	"database/sql"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/clorindastore/storefront-backend/internal/logging"
	"github.com/clorindastore/storefront-backend/internal/order"
)

// SMTPSender emails the customer a receipt once their order settles.
// Sending is fire-and-forget: a mail outage never fails a settlement.
type SMTPSender struct {
	db        *sql.DB
	dialer    *gomail.Dialer
	fromName  string
	fromEmail string
}

func NewSMTPSender(db *sql.DB, host string, port int, user, pass, fromName, fromEmail string) *SMTPSender {
	return &SMTPSender{
		db:        db,
		dialer:    gomail.NewDialer(host, port, user, pass),
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) OrderPaid(ord *order.Order) {
	go s.sendReceipt(ord)
}

func (s *SMTPSender) sendReceipt(ord *order.Order) {
	var email, name string
	err := s.db.QueryRow(`SELECT email, name FROM users WHERE id = $1`, ord.UserID).Scan(&email, &name)
	if err != nil {
		logging.Log(logging.Event{Service: "mailer", Event: "lookup_failed", OrderNumber: ord.OrderNumber, Error: err.Error()})
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(s.fromEmail, s.fromName))
	m.SetHeader("To", m.FormatAddress(email, name))
	m.SetHeader("Subject", fmt.Sprintf("Payment received for order %s", ord.OrderNumber))
	m.SetBody("text/html", receiptBody(ord, name))

	if err := s.dialer.DialAndSend(m); err != nil {
		logging.Log(logging.Event{Service: "mailer", Event: "send_failed", OrderNumber: ord.OrderNumber, Error: err.Error()})
		return
	}
	logging.Log(logging.Event{Service: "mailer", Event: "receipt_sent", OrderNumber: ord.OrderNumber})
}

func receiptBody(ord *order.Order, name string) string {
	body := fmt.Sprintf("<p>Hi %s,</p><p>We received your payment for order <strong>%s</strong>.</p><ul>",
		name, ord.OrderNumber)
	for _, it := range ord.Items {
		body += fmt.Sprintf("<li>%s × %d</li>", it.ProductName, it.Quantity)
	}
	body += fmt.Sprintf("</ul><p>Total: %d</p><p>We are preparing your order for shipment.</p>", ord.TotalAmount)
	return body
}
