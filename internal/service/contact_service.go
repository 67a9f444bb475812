package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	"github.com/givebridge/backend/internal/validate"
)

// ContactNotifier is the mail surface ContactService needs.
type ContactNotifier interface {
	SendContactNotification(ctx context.Context, msg *model.ContactMessage) error
}

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit stores a new contact message and relays it to the admin
	// inbox. The msg.ID and timestamps are populated on success.
	Submit(ctx context.Context, msg *model.ContactMessage) error

	// List returns stored contact messages, newest first.
	List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error)
}

type contactServiceImpl struct {
	repo     repository.ContactRepository
	notifier ContactNotifier // optional, nil = skip
}

// NewContactService creates a ContactService backed by the given
// repository. notifier may be nil.
func NewContactService(repo repository.ContactRepository, notifier ContactNotifier) ContactService {
	return &contactServiceImpl{repo: repo, notifier: notifier}
}

// Submit stores the message and notifies admins. A failed notification
// is logged, not surfaced: the message is already persisted.
func (s *contactServiceImpl) Submit(ctx context.Context, msg *model.ContactMessage) error {
	now := time.Now().UTC()
	msg.Name = validate.Clean(msg.Name)
	msg.Subject = validate.Clean(msg.Subject)
	msg.Message = validate.Clean(msg.Message)
	msg.Status = "unread"
	msg.CreatedAt = now
	msg.UpdatedAt = now
	if err := s.repo.Save(ctx, msg); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendContactNotification(ctx, msg); err != nil {
			slog.Warn("contact: admin notification failed", "id", msg.ID, "error", err)
		}
	}
	return nil
}

func (s *contactServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.ContactMessage, error) {
	return s.repo.List(ctx, limit, offset)
}
