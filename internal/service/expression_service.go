package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/givebridge/backend/internal/apperr"
	"github.com/givebridge/backend/internal/model"
	"github.com/givebridge/backend/internal/repository"
	"github.com/givebridge/backend/internal/validate"
)

// ExpressionNotifier is the mail surface ExpressionService needs.
type ExpressionNotifier interface {
	SendExpressionNotification(ctx context.Context, e *model.ExpressionOfInterest) error
}

// ExpressionService records expressions of interest and relays them to
// the admin inbox.
type ExpressionService interface {
	Submit(ctx context.Context, e *model.ExpressionOfInterest) error
	List(ctx context.Context, limit, offset int) ([]*model.ExpressionOfInterest, error)
	// Notify re-sends the admin notification for an already stored
	// expression (admin-triggered).
	Notify(ctx context.Context, e *model.ExpressionOfInterest) error
}

type expressionServiceImpl struct {
	store    repository.ExpressionStore
	notifier ExpressionNotifier // optional, nil = skip
}

// NewExpressionService creates an ExpressionService over the given store.
func NewExpressionService(store repository.ExpressionStore, notifier ExpressionNotifier) ExpressionService {
	return &expressionServiceImpl{store: store, notifier: notifier}
}

func (s *expressionServiceImpl) Submit(ctx context.Context, e *model.ExpressionOfInterest) error {
	if strings.TrimSpace(e.Name) == "" {
		return apperr.NewValidation("name", "name is required")
	}
	if !validate.Email(e.Email) {
		return apperr.NewValidation("email", "a valid email address is required")
	}
	e.Message = validate.Clean(e.Message)

	if err := s.store.Add(ctx, e); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendExpressionNotification(ctx, e); err != nil {
			slog.Warn("expression: admin notification failed", "id", e.ID, "error", err)
		}
	}
	return nil
}

func (s *expressionServiceImpl) List(ctx context.Context, limit, offset int) ([]*model.ExpressionOfInterest, error) {
	return s.store.List(ctx, limit, offset)
}

func (s *expressionServiceImpl) Notify(ctx context.Context, e *model.ExpressionOfInterest) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.SendExpressionNotification(ctx, e)
}
