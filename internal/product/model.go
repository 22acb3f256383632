package product

import (
	"bytes"
	"encoding/json"
	"time"
)

// CategoryRef is the denormalised category a product points at. The API
// always populates it, but a bare id string is accepted as well.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = CategoryRef{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*c = CategoryRef{ID: id}
		return nil
	}

	type plain CategoryRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CategoryRef(p)
	return nil
}

type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       float64     `json:"price"`
	Category    CategoryRef `json:"category"`
	Images      []string    `json:"images"`
	Stock       int         `json:"stock"`
	IsActive    bool        `json:"isActive"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

type CreateProductInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	CategoryID  string   `json:"category"`
	Stock       *int     `json:"stock,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty"`
	Images      []string `json:"-"`
}

// UpdateProductInput is a partial update. NewImages replace the current
// images unless KeepExistingImages is set, in which case they are appended.
type UpdateProductInput struct {
	Name               *string  `json:"name,omitempty"`
	Description        *string  `json:"description,omitempty"`
	Price              *float64 `json:"price,omitempty"`
	CategoryID         *string  `json:"category,omitempty"`
	Stock              *int     `json:"stock,omitempty"`
	IsActive           *bool    `json:"isActive,omitempty"`
	NewImages          []string `json:"-"`
	KeepExistingImages bool     `json:"keepExistingImages,omitempty"`
}

// UpdateFields are the column changes the repository applies. A nil
// Images leaves the stored list untouched.
type UpdateFields struct {
	Name        *string
	Description *string
	Price       *float64
	CategoryID  *string
	Stock       *int
	IsActive    *bool
	Images      []string
}

func (f UpdateFields) empty() bool {
	return f.Name == nil && f.Description == nil && f.Price == nil &&
		f.CategoryID == nil && f.Stock == nil && f.IsActive == nil && f.Images == nil
}
