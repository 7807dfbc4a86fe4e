package category

import (
	"time"

	categoryDatamodel "github.com/karteek/splitcard/internal/core/datamodel/category"
)

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CategoryResponse struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DefaultCategories is the built-in transaction category catalogue.
var DefaultCategories = []string{
	"Housing",
	"Utilities",
	"Groceries",
	"Food",
	"Transportation",
	"Healthcare",
	"Entertainment",
	"Shopping",
	"Education",
	"Travel",
	"Subscriptions",
	"Debt Payments",
	"Taxes",
	"Gifts",
	"Miscellaneous",
	"Personal Care",
	"Insurance",
	"Savings",
	"Others",
}

// GeneralCategory is the placeholder category given to parsed statement lines.
const GeneralCategory = "General"

func (c *Category) IsActiveCategory() bool {
	return c.IsActive
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		Name:        c.Name,
		Description: c.Description,
	}
}

func NewCategory(name, description string) *Category {
	now := time.Now()
	return &Category{
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(c *Category) *categoryDatamodel.ExpenseCategory {
	return &categoryDatamodel.ExpenseCategory{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.ExpenseCategory) *Category {
	return &Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
