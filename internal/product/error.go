package product

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired     = errors.New("product name is required")
	ErrInvalidPrice     = errors.New("product price must not be negative")
	ErrInvalidStock     = errors.New("product stock must not be negative")
	ErrCategoryRequired = errors.New("product category is required")
	ErrNoFields         = errors.New("no fields to update")

	// -- Resource State --
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid category")
)
