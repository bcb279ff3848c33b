package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
)

const maxLineQuantity = 99

type catalogLoader interface {
	FindActiveByIDs(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

// Service exposes buyer cart operations.
type Service interface {
	Get(ctx context.Context, buyerToken string, sellerID uuid.UUID) (*Cart, error)
	Put(ctx context.Context, buyerToken string, sellerID uuid.UUID, items []Item) (*Cart, error)
	Clear(ctx context.Context, buyerToken string, sellerID uuid.UUID) error
}

type service struct {
	store   Store
	catalog catalogLoader
}

// NewService builds a cart service with the provided store and catalog.
func NewService(store Store, catalog catalogLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	return &service{store: store, catalog: catalog}, nil
}

// Get loads the stored cart and reconciles it against the live catalog. A
// missing cart reads as empty rather than an error.
func (s *service) Get(ctx context.Context, buyerToken string, sellerID uuid.UUID) (*Cart, error) {
	stored, err := s.store.Get(ctx, buyerToken, sellerID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return New(sellerID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if err := s.revalidate(ctx, sellerID, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Put replaces the stored cart with the provided lines after revalidating
// them server-side. Client names and prices are never trusted.
func (s *service) Put(ctx context.Context, buyerToken string, sellerID uuid.UUID, items []Item) (*Cart, error) {
	cart := New(sellerID)
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart line missing product id")
		}
		if item.Quantity <= 0 {
			continue
		}
		// One line per product: repeated ids collapse into a single line so
		// SetQuantity and removal always see the whole quantity.
		merged := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == item.ProductID {
				cart.Items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, item)
		}
	}
	for i := range cart.Items {
		if cart.Items[i].Quantity > maxLineQuantity {
			cart.Items[i].Quantity = maxLineQuantity
		}
	}

	if err := s.revalidate(ctx, sellerID, cart); err != nil {
		return nil, err
	}

	if cart.IsEmpty() {
		if err := s.store.Remove(ctx, buyerToken, sellerID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return cart, nil
	}
	if err := s.store.Set(ctx, buyerToken, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cart")
	}
	return cart, nil
}

func (s *service) Clear(ctx context.Context, buyerToken string, sellerID uuid.UUID) error {
	if err := s.store.Remove(ctx, buyerToken, sellerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func (s *service) revalidate(ctx context.Context, sellerID uuid.UUID, cart *Cart) error {
	if cart.IsEmpty() {
		return nil
	}
	active, err := s.catalog.FindActiveByIDs(ctx, sellerID, cart.ProductIDs())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}
	cart.Revalidate(active)
	return nil
}
