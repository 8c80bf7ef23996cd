package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"

	"github.com/joelcalolo/MoFleet-sub000/internal/billing"
	"github.com/joelcalolo/MoFleet-sub000/internal/domain"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
)

// Email is a plain-text message ready to hand to a Mailer.
type Email struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// Mailer delivers a single email.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

type smtpDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpMailer struct {
	dialer smtpDialer
	from   string
}

func NewSMTPMailer(host string, port int, username, password, from string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (s *smtpMailer) Send(ctx context.Context, e Email) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	if e.ToName != "" {
		m.SetAddressHeader("To", e.To, e.ToName)
	} else {
		m.SetHeader("To", e.To)
	}
	m.SetHeader("Subject", e.Subject)
	m.SetBody("text/plain", e.Body)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", e.To)
	if err := s.dialer.DialAndSend(m); err != nil {
		logger.ExternalServiceResult("smtp", "DialAndSend", err)
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}
	logger.ExternalServiceResult("smtp", "DialAndSend", nil)
	return nil
}

type sendGridMailer struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridMailer(apiKey, from, fromName string) Mailer {
	return &sendGridMailer{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}
}

func (s *sendGridMailer) Send(ctx context.Context, e Email) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(e.ToName, e.To)
	message := mail.NewSingleEmail(from, e.Subject, to, e.Body, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", e.To)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return fmt.Errorf("failed to send email via sendgrid: %w", err)
	}
	if resp.StatusCode >= 400 {
		err := fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
		logger.ExternalServiceResult("sendgrid", "Send", err)
		return err
	}
	logger.ExternalServiceResult("sendgrid", "Send", nil, "status", resp.StatusCode)
	return nil
}

type logMailer struct{}

// NewLogMailer only logs what would have been sent.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) Send(ctx context.Context, e Email) error {
	logger.InfoContext(ctx, "Email delivery disabled, dropping message", "to", e.To, "subject", e.Subject)
	return nil
}

type emailNotifier struct {
	mailer Mailer
}

func NewEmailNotifier(mailer Mailer) Notifier {
	return &emailNotifier{mailer: mailer}
}

func (n *emailNotifier) SendReturnReceipt(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, checkin *domain.Checkin) error {
	if customer.Email == "" {
		return domain.NewValidationError("email", "customer has no email address")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", customer.Name)
	fmt.Fprintf(&b, "We received %s %s (%s) on %s.\n\n", vehicle.Brand, vehicle.Model, vehicle.Plate, billing.FormatTime(checkin.ReturnedAt))
	fmt.Fprintf(&b, "Booking: %s to %s\n", r.StartDate, r.EndDate)
	fmt.Fprintf(&b, "Estimated total: %s\n", billing.FormatCents(r.TotalCents))
	if checkin.ExtraDays > 0 {
		fmt.Fprintf(&b, "Extra days: %d (%s)\n", checkin.ExtraDays, billing.FormatCents(checkin.ExtraDaysFeeCents))
	}
	if checkin.ExcessDistanceKm > 0 {
		fmt.Fprintf(&b, "Excess distance: %d km (%s)\n", checkin.ExcessDistanceKm, billing.FormatCents(checkin.ExcessDistanceCents))
	}
	fmt.Fprintf(&b, "Extra fees: %s\n", billing.FormatCents(checkin.ExtraFeesCents))
	fmt.Fprintf(&b, "Fines: %s\n", billing.FormatCents(checkin.FinesCents))
	if checkin.DepositReturned {
		fmt.Fprintf(&b, "Deposit returned: %s\n", billing.FormatCents(checkin.DepositReturnedCents))
	}
	b.WriteString("\nThank you for renting with us.\nMoFleet")

	return n.mailer.Send(ctx, Email{
		To:      customer.Email,
		ToName:  customer.Name,
		Subject: fmt.Sprintf("Return receipt - %s", vehicle.Plate),
		Body:    b.String(),
	})
}

func (n *emailNotifier) SendOverdueReminder(ctx context.Context, customer *domain.Customer, vehicle *domain.Vehicle, r *domain.Reservation, expectedReturn time.Time) error {
	if customer.Email == "" {
		return domain.NewValidationError("email", "customer has no email address")
	}

	body := fmt.Sprintf("Hello %s,\n\nThe %s %s (%s) booked until %s was expected back on %s and has not been returned yet.\n\n"+
		"Extra days are charged at the daily rate of the booking. Please contact us to arrange the return.\n\nMoFleet",
		customer.Name, vehicle.Brand, vehicle.Model, vehicle.Plate, r.EndDate, billing.FormatTime(expectedReturn))

	return n.mailer.Send(ctx, Email{
		To:      customer.Email,
		ToName:  customer.Name,
		Subject: fmt.Sprintf("Overdue return - %s", vehicle.Plate),
		Body:    body,
	})
}
