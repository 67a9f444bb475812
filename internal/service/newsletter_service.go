package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	"github.com/givebridge/backend/internal/validate"
)

// WelcomeNotifier is the mail surface NewsletterService needs.
type WelcomeNotifier interface {
	SendNewsletterWelcome(ctx context.Context, s *model.Subscriber) error
}

// NewsletterService manages newsletter subscriptions.
type NewsletterService interface {
	// Subscribe adds the email to the list. Subscribing an address that
	// is already on the list succeeds without a second welcome mail.
	Subscribe(ctx context.Context, email, name string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

type newsletterServiceImpl struct {
	store    repository.SubscriberStore
	notifier WelcomeNotifier // optional, nil = skip
}

// NewNewsletterService creates a NewsletterService over the given store.
func NewNewsletterService(store repository.SubscriberStore, notifier WelcomeNotifier) NewsletterService {
	return &newsletterServiceImpl{store: store, notifier: notifier}
}

func (s *newsletterServiceImpl) Subscribe(ctx context.Context, email, name string) (*model.Subscriber, error) {
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return nil, apperr.NewValidation("email", "a valid email address is required")
	}

	sub := &model.Subscriber{Email: email, Name: strings.TrimSpace(name)}
	if err := s.store.Add(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Re-subscribing is not an error; just don't welcome twice.
			return sub, nil
		}
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendNewsletterWelcome(ctx, sub); err != nil {
			slog.Warn("newsletter: welcome mail failed", "email", sub.Email, "error", err)
		}
	}
	return sub, nil
}

func (s *newsletterServiceImpl) Unsubscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !validate.Email(email) {
		return apperr.NewValidation("email", "a valid email address is required")
	}
	err := s.store.Remove(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		// Unsubscribing an unknown address is a no-op, not a 404 leak.
		return nil
	}
	return err
}
