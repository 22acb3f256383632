package category

import (
	"context"
	"strings"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Category, error)
	Get(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, input CreateCategoryInput) (*Category, error)
	Update(ctx context.Context, id string, input UpdateCategoryInput) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id string) (*Category, error) {
	if id == "" {
		return nil, ErrCategoryNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)

	if input.Name == "" {
		logger.FromCtx(ctx).Warn("create category validation failed: empty name")
		return nil, ErrNameRequired
	}

	return s.repo.Create(ctx, input)
}

func (s *service) Update(ctx context.Context, id string, input UpdateCategoryInput) (*Category, error) {
	if id == "" {
		return nil, ErrCategoryNotFound
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		input.Name = &name
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		input.Description = &desc
	}
	if input.Name == nil && input.Description == nil {
		return nil, ErrNoFields
	}

	return s.repo.Update(ctx, id, input)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrCategoryNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromCtx(ctx).Warn("delete category failed",
			zap.String("category_id", id),
			zap.Error(err),
		)
		return err
	}
	return nil
}
