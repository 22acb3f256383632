package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/category"
	"storefront/internal/db"
	"storefront/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context) ([]*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, input CreateProductInput) (*Product, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*Product, error)
	Delete(ctx context.Context, id string) (*Product, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const selectProduct = `
	SELECT
		p.id,
		p.name,
		p.description,
		p.price,
		p.category_id,
		COALESCE(c.name, ''),
		p.images,
		p.stock,
		p.is_active,
		p.created_at,
		p.updated_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

func scanProduct(row interface{ Scan(...any) error }) (*Product, error) {
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Category.ID,
		&p.Category.Name,
		pq.Array(&p.Images),
		&p.Stock,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("layer", "repository"))

	rows, err := r.db.QueryContext(ctx, selectProduct+" ORDER BY p.created_at DESC")
	if err != nil {
		log.Error("DB query failed ListProducts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	products := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Error("Row scan failed", zap.Error(err))
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		log.Error("Rows iteration failed", zap.Error(err))
		return nil, err
	}

	return products, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	return getByID(ctx, r.db, id)
}

func getByID(ctx context.Context, q db.Querier, id string) (*Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, selectProduct+" WHERE p.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Create inserts the product and bumps its category's product count in one
// transaction.
func (r *repository) Create(ctx context.Context, input CreateProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("product_name", input.Name),
		zap.String("category_id", input.CategoryID),
	)

	var created *Product
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := category.LookupName(ctx, tx, input.CategoryID); err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				return ErrInvalidCategory
			}
			return err
		}

		var id string
		err := tx.QueryRowContext(ctx, `
			INSERT INTO products (name, description, price, category_id, images, stock, is_active)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`,
			input.Name,
			input.Description,
			input.Price,
			input.CategoryID,
			pq.Array(input.Images),
			derefInt(input.Stock, 0),
			derefBool(input.IsActive, true),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		if err := category.AdjustProductCount(ctx, tx, input.CategoryID, 1); err != nil {
			return err
		}

		created, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		log.Error("create product failed", zap.Error(err))
		return nil, err
	}

	log.Info("product created", zap.String("product_id", created.ID))
	return created, nil
}

// Update applies fields and, when the category changes, moves one unit of
// product count from the old category to the new one.
func (r *repository) Update(ctx context.Context, id string, fields UpdateFields) (*Product, error) {
	if fields.empty() {
		return nil, ErrNoFields
	}

	log := logger.FromCtx(ctx).With(zap.String("product_id", id))

	var updated *Product
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var currentCategory string
		err := tx.QueryRowContext(ctx,
			`SELECT category_id FROM products WHERE id = $1 FOR UPDATE`, id,
		).Scan(&currentCategory)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		if fields.CategoryID != nil && *fields.CategoryID != currentCategory {
			if _, err := category.LookupName(ctx, tx, *fields.CategoryID); err != nil {
				if errors.Is(err, category.ErrCategoryNotFound) {
					return ErrInvalidCategory
				}
				return err
			}
			if err := category.AdjustProductCount(ctx, tx, currentCategory, -1); err != nil {
				return err
			}
			if err := category.AdjustProductCount(ctx, tx, *fields.CategoryID, 1); err != nil {
				return err
			}
		}

		query, args := buildUpdate(id, fields)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update product: %w", err)
		}

		updated, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		log.Warn("update product failed", zap.Error(err))
		return nil, err
	}

	return updated, nil
}

func buildUpdate(id string, f UpdateFields) (string, []any) {
	sets := []string{}
	args := []any{}

	add := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if f.Name != nil {
		add("name", *f.Name)
	}
	if f.Description != nil {
		add("description", *f.Description)
	}
	if f.Price != nil {
		add("price", *f.Price)
	}
	if f.CategoryID != nil {
		add("category_id", *f.CategoryID)
	}
	if f.Stock != nil {
		add("stock", *f.Stock)
	}
	if f.IsActive != nil {
		add("is_active", *f.IsActive)
	}
	if f.Images != nil {
		add("images", pq.Array(f.Images))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE products SET %s, updated_at = NOW() WHERE id = $%d",
		strings.Join(sets, ", "), len(args))
	return query, args
}

// Delete removes the product and decrements its category count. The deleted
// row is returned so the caller can clean up its image files.
func (r *repository) Delete(ctx context.Context, id string) (*Product, error) {
	var deleted *Product
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		p, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}

		if err := category.AdjustProductCount(ctx, tx, p.Category.ID, -1); err != nil {
			return err
		}

		deleted = p
		return nil
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("delete product failed",
			zap.String("product_id", id),
			zap.Error(err),
		)
		return nil, err
	}
	return deleted, nil
}

func derefInt(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func derefBool(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
