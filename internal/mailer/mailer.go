// Package mailer renders and sends transactional email through Resend.
// Every send validates required fields before any network I/O and wraps
// provider failures in apperr.DeliveryError so callers can log instead
// of failing the parent request.
package mailer

import (
	"context"

	"github.com/givebridge/backend/internal/model"
)

// Mailer is the notification dispatcher consumed by services. One method
// per mail kind keeps payloads typed; tests substitute func-field mocks.
type Mailer interface {
	// SendDonationConfirmation thanks the donor. Failure must never roll
	// back a successful payment; callers catch and log.
	SendDonationConfirmation(ctx context.Context, d *model.Donation) error
	// SendRefundNotification informs the donor of a processed refund.
	SendRefundNotification(ctx context.Context, d *model.Donation, r *model.Refund) error
	// SendContactNotification relays a contact form submission to admins.
	SendContactNotification(ctx context.Context, msg *model.ContactMessage) error
	// SendVolunteerNotification relays a volunteer application to admins.
	SendVolunteerNotification(ctx context.Context, app *model.VolunteerApplication) error
	// SendEnrollmentNotification relays an enrollment request to admins.
	SendEnrollmentNotification(ctx context.Context, req *model.EnrollmentRequest) error
	// SendExpressionNotification relays an expression of interest to admins.
	SendExpressionNotification(ctx context.Context, e *model.ExpressionOfInterest) error
	// SendNewsletterWelcome greets a new subscriber.
	SendNewsletterWelcome(ctx context.Context, s *model.Subscriber) error
}
