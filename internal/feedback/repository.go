package feedback

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, f Feedback) (*Feedback, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, f Feedback) (*Feedback, error) {
	query := `
		INSERT INTO feedback (type, name, email, subject, message, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		f.Type, f.Name, f.Email, f.Subject, f.Message, f.Rating,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("db: failed to insert feedback",
			zap.String("email", f.Email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create feedback: %w", err)
	}

	return &f, nil
}
