package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/config"
	"github.com/givebridge/backend/internal/model"
)

// ResendMailer sends mail through the Resend API. Sender and recipient
// routing comes from the injected config.MailConfig, resolved once at
// startup — no per-call environment branching.
type ResendMailer struct {
	client *resend.Client
	cfg    config.MailConfig
}

var _ Mailer = (*ResendMailer)(nil)

// NewResendMailer creates a ResendMailer. An empty API key yields a
// mailer whose sends fail with DeliveryError, which callers already
// treat as non-fatal; this keeps local development keyless.
func NewResendMailer(apiKey string, cfg config.MailConfig) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), cfg: cfg}
}

// SendDonationConfirmation thanks the donor for a recorded donation.
func (m *ResendMailer) SendDonationConfirmation(ctx context.Context, d *model.Donation) error {
	if d.DonorEmail == "" {
		return apperr.NewValidation("donorEmail", "recipient email is required")
	}
	if d.PaymentIntentID == "" {
		return apperr.NewValidation("paymentIntentId", "payment reference is required")
	}

	msg, err := render("Thank you for your donation", mailData{
		Heading: "Thank you, " + displayName(d.DonorName) + "!",
		Intro:   "Your donation has been received. These are the details for your records:",
		Rows: []row{
			{"Amount", amountLabel(d.Amount, d.Currency)},
			{"Project", projectLabel(d)},
			{"Reference", d.PaymentIntentID},
			{"Date", d.CreatedAt.Format("2 January 2006")},
		},
		Outro: "A PDF receipt is available on request. Thank you for your support.",
	})
	if err != nil {
		return err
	}
	return m.send(ctx, []string{d.DonorEmail}, msg)
}

// SendRefundNotification informs the donor their refund was processed.
func (m *ResendMailer) SendRefundNotification(ctx context.Context, d *model.Donation, r *model.Refund) error {
	if d.DonorEmail == "" {
		return apperr.NewValidation("donorEmail", "recipient email is required")
	}

	msg, err := render("Your donation has been refunded", mailData{
		Heading: "Refund processed",
		Intro:   "The following refund has been issued to your original payment method:",
		Rows: []row{
			{"Refunded", amountLabel(r.Amount, r.Currency)},
			{"Original donation", amountLabel(d.Amount, d.Currency)},
			{"Reference", d.PaymentIntentID},
		},
		Outro: "Refunds typically appear within 5-10 business days.",
	})
	if err != nil {
		return err
	}
	return m.send(ctx, []string{d.DonorEmail}, msg)
}

// SendContactNotification relays a contact message to the admin inbox.
func (m *ResendMailer) SendContactNotification(ctx context.Context, c *model.ContactMessage) error {
	if c.Email == "" || c.Message == "" {
		return apperr.NewValidation("message", "email and message are required")
	}

	subject := "New contact message"
	if c.Subject != "" {
		subject = "Contact: " + c.Subject
	}
	msg, err := render(subject, mailData{
		Heading: "New contact form submission",
		Rows: []row{
			{"From", displayName(c.Name)},
			{"Email", c.Email},
			{"Subject", c.Subject},
			{"Message", c.Message},
		},
	})
	if err != nil {
		return err
	}
	return m.sendAdmin(ctx, msg)
}

// SendVolunteerNotification relays a volunteer application to admins.
func (m *ResendMailer) SendVolunteerNotification(ctx context.Context, app *model.VolunteerApplication) error {
	if app.Name == "" || app.Email == "" {
		return apperr.NewValidation("name", "name and email are required")
	}

	msg, err := render("New volunteer application", mailData{
		Heading: "Volunteer application",
		Rows: []row{
			{"Name", app.Name},
			{"Email", app.Email},
			{"Phone", app.Phone},
			{"Availability", app.Availability},
			{"Skills", app.Skills},
			{"Message", app.Message},
		},
	})
	if err != nil {
		return err
	}
	return m.sendAdmin(ctx, msg)
}

// SendEnrollmentNotification relays an enrollment request to admins.
func (m *ResendMailer) SendEnrollmentNotification(ctx context.Context, req *model.EnrollmentRequest) error {
	if req.StudentName == "" || req.Email == "" || req.Programme == "" {
		return apperr.NewValidation("studentName", "student name, email and programme are required")
	}

	msg, err := render("New enrollment request: "+req.Programme, mailData{
		Heading: "Enrollment request",
		Rows: []row{
			{"Student", req.StudentName},
			{"Guardian", req.GuardianName},
			{"Email", req.Email},
			{"Phone", req.Phone},
			{"Programme", req.Programme},
			{"Notes", req.Notes},
		},
	})
	if err != nil {
		return err
	}
	return m.sendAdmin(ctx, msg)
}

// SendExpressionNotification relays an expression of interest to admins.
func (m *ResendMailer) SendExpressionNotification(ctx context.Context, e *model.ExpressionOfInterest) error {
	if e.Name == "" || e.Email == "" {
		return apperr.NewValidation("name", "name and email are required")
	}

	msg, err := render("New expression of interest", mailData{
		Heading: "Expression of interest",
		Rows: []row{
			{"Name", e.Name},
			{"Email", e.Email},
			{"Phone", e.Phone},
			{"Programme", e.Programme},
			{"Message", e.Message},
		},
	})
	if err != nil {
		return err
	}
	return m.sendAdmin(ctx, msg)
}

// SendNewsletterWelcome greets a new newsletter subscriber.
func (m *ResendMailer) SendNewsletterWelcome(ctx context.Context, s *model.Subscriber) error {
	if s.Email == "" {
		return apperr.NewValidation("email", "recipient email is required")
	}

	msg, err := render("Welcome to the Givebridge newsletter", mailData{
		Heading: "Welcome" + commaName(s.Name) + "!",
		Intro:   "You're subscribed. We send a short update about once a month — project news, impact stories and upcoming events.",
		Outro:   "Didn't sign up? Reply to this email and we'll remove you right away.",
	})
	if err != nil {
		return err
	}
	return m.send(ctx, []string{s.Email}, msg)
}

// sendAdmin routes to the configured admin recipients.
func (m *ResendMailer) sendAdmin(ctx context.Context, msg message) error {
	if len(m.cfg.AdminRecipients) == 0 && !m.cfg.Sandbox {
		return &apperr.DeliveryError{Err: fmt.Errorf("no admin recipients configured")}
	}
	return m.send(ctx, m.cfg.AdminRecipients, msg)
}

func (m *ResendMailer) send(ctx context.Context, to []string, msg message) error {
	if m.cfg.Sandbox {
		slog.Debug("mail sandbox reroute", "original_to", strings.Join(to, ","), "subject", msg.Subject)
		to = []string{m.cfg.SandboxRecipient}
	}

	params := &resend.SendEmailRequest{
		From:    m.cfg.From,
		To:      to,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return &apperr.DeliveryError{Err: err}
	}
	slog.Info("mail sent", "id", sent.Id, "subject", msg.Subject)
	return nil
}

func displayName(name string) string {
	if name == "" {
		return "Anonymous"
	}
	return name
}

func commaName(name string) string {
	if name == "" {
		return ""
	}
	return ", " + name
}

func amountLabel(minor int64, currency string) string {
	return fmt.Sprintf("%.2f %s", float64(minor)/100, strings.ToUpper(currency))
}

func projectLabel(d *model.Donation) string {
	if d.ProjectTitle != "" {
		return d.ProjectTitle
	}
	if strings.EqualFold(d.ProjectID, "general") {
		return "General Fund"
	}
	return d.ProjectID
}
