package service

import (
	"context"
	"strings"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/validate"
)

// OutreachNotifier is the mail surface OutreachService needs.
type OutreachNotifier interface {
	SendVolunteerNotification(ctx context.Context, app *model.VolunteerApplication) error
	SendEnrollmentNotification(ctx context.Context, req *model.EnrollmentRequest) error
}

// OutreachService handles volunteer and enrollment form intake. These
// flows have no persistence of their own; the admin mail is the side
// effect, so a delivery failure fails the request.
type OutreachService interface {
	SubmitVolunteer(ctx context.Context, app *model.VolunteerApplication) error
	SubmitEnrollment(ctx context.Context, req *model.EnrollmentRequest) error
}

type outreachServiceImpl struct {
	notifier OutreachNotifier
}

// NewOutreachService creates an OutreachService sending through notifier.
func NewOutreachService(notifier OutreachNotifier) OutreachService {
	return &outreachServiceImpl{notifier: notifier}
}

func (s *outreachServiceImpl) SubmitVolunteer(ctx context.Context, app *model.VolunteerApplication) error {
	if strings.TrimSpace(app.Name) == "" {
		return apperr.NewValidation("name", "name is required")
	}
	if !validate.Email(app.Email) {
		return apperr.NewValidation("email", "a valid email address is required")
	}
	app.Message = validate.Clean(app.Message)
	return s.notifier.SendVolunteerNotification(ctx, app)
}

func (s *outreachServiceImpl) SubmitEnrollment(ctx context.Context, req *model.EnrollmentRequest) error {
	if strings.TrimSpace(req.StudentName) == "" {
		return apperr.NewValidation("studentName", "student name is required")
	}
	if !validate.Email(req.Email) {
		return apperr.NewValidation("email", "a valid email address is required")
	}
	if strings.TrimSpace(req.Programme) == "" {
		return apperr.NewValidation("programme", "programme is required")
	}
	req.Notes = validate.Clean(req.Notes)
	return s.notifier.SendEnrollmentNotification(ctx, req)
}
