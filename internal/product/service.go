package product

import (
	"context"
	"strings"
	"time"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

// ImageRemover deletes stored image files by their public path.
type ImageRemover interface {
	Remove(ctx context.Context, paths []string)
}

type Service interface {
	List(ctx context.Context) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateProductInput) (*Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*Product, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	images ImageRemover
}

func NewService(repo Repository, images ImageRemover) Service {
	return &service{repo: repo, images: images}
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ListProducts"),
	)

	start := time.Now()

	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to fetch product list",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	log.Info("get product list success",
		zap.Int("count", len(products)),
		zap.Duration("duration", time.Since(start)),
	)
	return products, nil
}

func (s *service) Get(ctx context.Context, id string) (*Product, error) {
	if id == "" {
		return nil, ErrProductNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)

	if err := validateCreate(input); err != nil {
		s.removeImages(ctx, input.Images)
		return nil, err
	}

	if input.Images == nil {
		input.Images = []string{}
	}

	p, err := s.repo.Create(ctx, input)
	if err != nil {
		s.removeImages(ctx, input.Images)
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, id string, input UpdateProductInput) (*Product, error) {
	fields, err := buildFields(id, input)
	if err != nil {
		s.removeImages(ctx, input.NewImages)
		return nil, err
	}

	var replaced []string
	if len(input.NewImages) > 0 {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			s.removeImages(ctx, input.NewImages)
			return nil, err
		}
		fields.Images, replaced = MergeImages(existing.Images, input.NewImages, input.KeepExistingImages)
	}

	p, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		s.removeImages(ctx, input.NewImages)
		return nil, err
	}

	s.removeImages(ctx, replaced)
	return p, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrProductNotFound
	}

	p, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.removeImages(ctx, p.Images)
	logger.FromCtx(ctx).Info("product deleted",
		zap.String("product_id", id),
		zap.Int("images_removed", len(p.Images)),
	)
	return nil
}

func validateCreate(input CreateProductInput) error {
	switch {
	case input.Name == "":
		return ErrNameRequired
	case input.Price < 0:
		return ErrInvalidPrice
	case input.Stock != nil && *input.Stock < 0:
		return ErrInvalidStock
	case input.CategoryID == "":
		return ErrCategoryRequired
	}
	return nil
}

func buildFields(id string, input UpdateProductInput) (UpdateFields, error) {
	if id == "" {
		return UpdateFields{}, ErrProductNotFound
	}

	fields := UpdateFields{
		Description: trimPtr(input.Description),
		Price:       input.Price,
		CategoryID:  input.CategoryID,
		Stock:       input.Stock,
		IsActive:    input.IsActive,
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return UpdateFields{}, ErrNameRequired
		}
		fields.Name = &name
	}
	if input.Price != nil && *input.Price < 0 {
		return UpdateFields{}, ErrInvalidPrice
	}
	if input.Stock != nil && *input.Stock < 0 {
		return UpdateFields{}, ErrInvalidStock
	}
	if input.CategoryID != nil && *input.CategoryID == "" {
		return UpdateFields{}, ErrCategoryRequired
	}

	return fields, nil
}

// MergeImages resolves the image list for an update carrying new uploads.
// With keep set the uploads are appended; otherwise they replace the
// existing list, which is returned as the set of files to remove.
func MergeImages(existing, uploaded []string, keep bool) (images, replaced []string) {
	if len(uploaded) == 0 {
		return existing, nil
	}
	if keep {
		images = make([]string, 0, len(existing)+len(uploaded))
		images = append(images, existing...)
		return append(images, uploaded...), nil
	}
	return append([]string(nil), uploaded...), existing
}

func (s *service) removeImages(ctx context.Context, paths []string) {
	if s.images == nil || len(paths) == 0 {
		return
	}
	s.images.Remove(ctx, paths)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
