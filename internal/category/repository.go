package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/db"
	"storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	Create(ctx context.Context, input CreateCategoryInput) (*Category, error)
	Update(ctx context.Context, id string, input UpdateCategoryInput) (*Category, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectColumns = `
	SELECT
		c.id,
		c.name,
		c.description,
		c.product_count,
		c.created_at,
		c.updated_at
	FROM categories c
`

func scanCategory(row interface{ Scan(...any) error }) (*Category, error) {
	var c Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ProductCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx)

	rows, err := r.db.QueryContext(ctx, selectColumns+" ORDER BY c.name ASC")
	if err != nil {
		log.Error("DB query failed ListCategories", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	categories := make([]*Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return categories, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, selectColumns+" WHERE c.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *repository) Create(ctx context.Context, input CreateCategoryInput) (*Category, error) {
	log := logger.FromCtx(ctx).With(zap.String("category_name", input.Name))

	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, product_count, created_at, updated_at
	`

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, input.Name, input.Description))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrCategoryExists
		}
		log.Error("CreateCategory DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create category: %w", err)
	}

	log.Info("category created", zap.String("category_id", c.ID))
	return c, nil
}

func (r *repository) Update(ctx context.Context, id string, input UpdateCategoryInput) (*Category, error) {
	sets := []string{}
	args := []any{}

	if input.Name != nil {
		args = append(args, *input.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if input.Description != nil {
		args = append(args, *input.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil, ErrNoFields
	}

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE categories
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING id, name, description, product_count, created_at, updated_at
	`, strings.Join(sets, ", "), len(args))

	c, err := scanCategory(r.db.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrCategoryNotFound
	case db.IsUniqueViolation(err):
		return nil, ErrCategoryExists
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1 AND product_count = 0`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing deleted: either missing or still counting products.
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return ErrCategoryInUse
}

// LookupName returns the category's name, or ErrCategoryNotFound. It runs
// on q so the product repository can call it inside its own transaction.
func LookupName(ctx context.Context, q db.Querier, id string) (string, error) {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCategoryNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup category: %w", err)
	}
	return name, nil
}

// AdjustProductCount moves the denormalised product counter by delta.
func AdjustProductCount(ctx context.Context, q db.Querier, id string, delta int) error {
	_, err := q.ExecContext(ctx,
		`UPDATE categories SET product_count = GREATEST(product_count + $1, 0), updated_at = NOW() WHERE id = $2`,
		delta, id,
	)
	if err != nil {
		return fmt.Errorf("adjust product count: %w", err)
	}
	return nil
}
