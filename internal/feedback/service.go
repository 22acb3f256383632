package feedback

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	Submit(ctx context.Context, f Feedback) (*Feedback, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Submit(ctx context.Context, f Feedback) (*Feedback, error) {
	f.Type = strings.TrimSpace(f.Type)
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = strings.TrimSpace(f.Message)

	for field, v := range map[string]string{
		"type": f.Type, "name": f.Name, "email": f.Email, "subject": f.Subject, "message": f.Message,
	} {
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return nil, ErrInvalidRating
	}

	saved, err := s.repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("feedback entered",
		zap.String("feedback_id", saved.ID),
		zap.String("type", saved.Type),
		zap.Int("rating", saved.Rating),
	)
	return saved, nil
}
