package category

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired = errors.New("category name is required")
	ErrNoFields     = errors.New("no fields to update")

	// -- Resource State --
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category still has products")
)
