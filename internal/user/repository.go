package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"storefront/internal/db"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, u User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u User) (*User, error) {
	log := logger.FromCtx(ctx)

	query := `
		INSERT INTO users (name, email, gender, dob, address, phone, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, role, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		u.Name, u.Email, u.Gender, u.DOB, u.Address, u.Phone, u.Password,
	).Scan(&u.ID, &u.Role, &u.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailExists
		}
		log.Error("db: failed to insert user",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, gender, dob, address, phone, role, password, created_at
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Name, &u.Email, &u.Gender, &u.DOB, &u.Address, &u.Phone,
		&u.Role, &u.Password, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	return &u, nil
}
