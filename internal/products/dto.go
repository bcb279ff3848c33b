package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
)

// ProductDTO is the dashboard view of a product.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       int       `json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateProductInput captures a new listing.
type CreateProductInput struct {
	Name        string
	Description *string
	Price       int
	ImageURL    *string
	SortOrder   int
}

// UpdateProductInput captures a partial edit. Nil fields are left untouched.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *int
	ImageURL    *string
	IsActive    *bool
	SortOrder   *int
}

func toDTO(p *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		SortOrder:   p.SortOrder,
		CreatedAt:   p.CreatedAt,
	}
}

func toDTOs(list []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(list))
	for i := range list {
		out = append(out, *toDTO(&list[i]))
	}
	return out
}
