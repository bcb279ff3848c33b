package cart

import (
	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
)

// Item is one product line in a cart.
type Item struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Quantity  int       `json:"quantity"`
}

// Cart holds a buyer's in-progress selection for a single shop. Buyers keep
// one cart per shop; carts never merge across shops.
type Cart struct {
	SellerID uuid.UUID `json:"seller_id"`
	Items    []Item    `json:"items"`
}

// New returns an empty cart for the given shop.
func New(sellerID uuid.UUID) *Cart {
	return &Cart{SellerID: sellerID}
}

// Add puts one unit of the product in the cart, incrementing the quantity
// when the line already exists.
func (c *Cart) Add(product *models.Product) {
	for i := range c.Items {
		if c.Items[i].ProductID == product.ID {
			c.Items[i].Quantity++
			return
		}
	}
	c.Items = append(c.Items, Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Quantity:  1,
	})
}

// SetQuantity overwrites the quantity of a line. Zero or negative removes it.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		return
	}
}

// Total is the sum of price times quantity across all lines, in baht.
func (c *Cart) Total() int {
	total := 0
	for _, item := range c.Items {
		total += item.Price * item.Quantity
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Revalidate reconciles the cart against the live catalog: lines whose
// product is gone or hidden are dropped, surviving lines pick up the current
// name and price. Quantities are preserved.
func (c *Cart) Revalidate(activeProducts []models.Product) {
	byID := make(map[uuid.UUID]*models.Product, len(activeProducts))
	for i := range activeProducts {
		byID[activeProducts[i].ID] = &activeProducts[i]
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		item.Name = product.Name
		item.Price = product.Price
		kept = append(kept, item)
	}
	c.Items = kept
}

// ProductIDs returns the ids of every line, for catalog lookups.
func (c *Cart) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
