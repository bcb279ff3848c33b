package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tapshop/tapshop-backend/internal/delivery"
	"github.com/tapshop/tapshop-backend/internal/notifications"
	"github.com/tapshop/tapshop-backend/pkg/config"
	"github.com/tapshop/tapshop-backend/pkg/db"
	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/enums"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/types"
	"github.com/tapshop/tapshop-backend/pkg/validation"
)

const maxLineQuantity = 99

type orderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error)
	ConfirmPayment(ctx context.Context, id uuid.UUID) (bool, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, expected enums.OrderStatus) (bool, error)
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

type catalogLoader interface {
	FindActiveByIDs(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]models.Product, error)
}

type shipper interface {
	Ship(ctx context.Context, order *models.Order, seller *models.Seller) (*delivery.ShipResult, error)
}

type notifier interface {
	EnqueueNewOrder(ctx context.Context, order notifications.OrderSummary)
}

// Service exposes the order lifecycle: buyer checkout, the public status
// view, and the seller's dashboard transitions.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	GetStatusByNumber(ctx context.Context, orderNumber string) (*StatusView, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error)
	GetForSeller(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error)
	ConfirmPayment(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error)
	Ship(ctx context.Context, sellerID, orderID uuid.UUID) (*delivery.ShipResult, error)
	MarkDelivered(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error)
	Cancel(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo     orderRepository
	sellers  sellerLoader
	catalog  catalogLoader
	shipper  shipper
	notifier notifier
	cfg      config.OrdersConfig
}

// NewService builds an order service. The notifier may be nil when push
// notifications are disabled.
func NewService(repo orderRepository, sellers sellerLoader, catalog catalogLoader, shipper shipper, notifier notifier, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller loader required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog loader required")
	}
	if shipper == nil {
		return nil, fmt.Errorf("shipper required")
	}
	if cfg.NumberPrefix == "" {
		return nil, fmt.Errorf("order number prefix required")
	}
	if cfg.NumberMaxAttempts <= 0 {
		return nil, fmt.Errorf("order number attempts must be positive, got %d", cfg.NumberMaxAttempts)
	}
	return &service{
		repo:     repo,
		sellers:  sellers,
		catalog:  catalog,
		shipper:  shipper,
		notifier: notifier,
		cfg:      cfg,
	}, nil
}

// Create validates the checkout submission, rebuilds the item snapshot from
// the live catalog and inserts the order. The seller notification is queued
// after the insert and never blocks or fails the checkout.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	buyerName := strings.TrimSpace(input.BuyerName)
	if buyerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer name is required")
	}
	buyerPhone, err := validation.ValidatePhone(input.BuyerPhone)
	if err != nil {
		return nil, err
	}
	buyerAddress, err := validation.ValidateAddress(input.BuyerAddress)
	if err != nil {
		return nil, err
	}
	if input.DeliveryFee < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	if _, err := s.sellers.FindByID(ctx, input.SellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown seller")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify seller")
	}

	items, err := s.snapshotItems(ctx, input.SellerID, input.Items)
	if err != nil {
		return nil, err
	}

	subtotal := items.Subtotal()
	order := &models.Order{
		SellerID:      input.SellerID,
		BuyerName:     buyerName,
		BuyerPhone:    buyerPhone,
		BuyerAddress:  buyerAddress,
		BuyerLat:      input.BuyerLat,
		BuyerLng:      input.BuyerLng,
		Items:         items,
		Subtotal:      subtotal,
		DeliveryFee:   input.DeliveryFee,
		Total:         subtotal + input.DeliveryFee,
		PaymentMethod: enums.PaymentMethodPromptPay,
		PaymentStatus: enums.PaymentStatusPending,
		OrderStatus:   enums.OrderStatusPending,
	}

	created, err := s.insertWithFreshNumber(ctx, order)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.EnqueueNewOrder(ctx, notifications.OrderSummary{
			SellerID:     created.SellerID,
			OrderNumber:  created.OrderNumber,
			BuyerName:    created.BuyerName,
			BuyerPhone:   created.BuyerPhone,
			BuyerAddress: created.BuyerAddress,
			Items:        created.Items,
			Subtotal:     created.Subtotal,
			DeliveryFee:  created.DeliveryFee,
			Total:        created.Total,
		})
	}

	return &CreateResult{OrderID: created.ID, OrderNumber: created.OrderNumber}, nil
}

// GetStatusByNumber serves the public buyer-facing status page.
func (s *service) GetStatusByNumber(ctx context.Context, orderNumber string) (*StatusView, error) {
	trimmed := strings.TrimSpace(orderNumber)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number is required")
	}
	order, err := s.repo.FindByOrderNumber(ctx, trimmed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order")
	}
	return NewStatusView(order), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error) {
	orders, err := s.repo.ListBySeller(ctx, sellerID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) GetForSeller(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	return s.findOwned(ctx, sellerID, orderID)
}

// ConfirmPayment moves a pending order to confirmed after the seller checked
// the transfer. Racing or out-of-order calls surface as state conflicts.
func (s *service) ConfirmPayment(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(enums.OrderStatusConfirmed) {
		return nil, transitionConflict(order.OrderStatus, enums.OrderStatusConfirmed)
	}

	moved, err := s.repo.ConfirmPayment(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm payment")
	}
	if !moved {
		return nil, transitionConflict(order.OrderStatus, enums.OrderStatusConfirmed)
	}
	return s.reload(ctx, orderID)
}

// Ship books a confirmed order out for delivery via the booking orchestrator.
func (s *service) Ship(ctx context.Context, sellerID, orderID uuid.UUID) (*delivery.ShipResult, error) {
	order, err := s.findOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.FindByID(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}
	return s.shipper.Ship(ctx, order, seller)
}

// MarkDelivered records the driver handoff for a shipped order.
func (s *service) MarkDelivered(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(enums.OrderStatusDelivered) {
		return nil, transitionConflict(order.OrderStatus, enums.OrderStatusDelivered)
	}

	moved, err := s.repo.MarkDelivered(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark delivered")
	}
	if !moved {
		return nil, transitionConflict(order.OrderStatus, enums.OrderStatusDelivered)
	}
	return s.reload(ctx, orderID)
}

// Cancel moves any non-terminal order to cancelled.
func (s *service) Cancel(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.findOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OrderStatus.CanTransitionTo(enums.OrderStatusCancelled) {
		return nil, transitionConflict(order.OrderStatus, enums.OrderStatusCancelled)
	}

	moved, err := s.repo.Cancel(ctx, orderID, order.OrderStatus)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	if !moved {
		// Status moved between the read and the write; the caller can retry
		// against the fresh state.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed, retry cancellation")
	}
	return s.reload(ctx, orderID)
}

// snapshotItems rebuilds the requested lines from the live catalog. Lines
// whose product is missing, inactive or owned by another seller are dropped;
// an order with nothing left is rejected.
func (s *service) snapshotItems(ctx context.Context, sellerID uuid.UUID, lines []LineInput) (types.OrderItems, error) {
	requested := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line missing product id")
		}
		if line.Quantity <= 0 {
			continue
		}
		quantity := line.Quantity
		if quantity > maxLineQuantity {
			quantity = maxLineQuantity
		}
		if _, seen := requested[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		requested[line.ProductID] += quantity
	}

	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}

	active, err := s.catalog.FindActiveByIDs(ctx, sellerID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order products")
	}

	items := make(types.OrderItems, 0, len(active))
	for _, product := range active {
		quantity, ok := requested[product.ID]
		if !ok {
			continue
		}
		items = append(items, types.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no purchasable items in order")
	}
	return items, nil
}

// insertWithFreshNumber retries the insert with a new order number while the
// unique index rejects collisions.
func (s *service) insertWithFreshNumber(ctx context.Context, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < s.cfg.NumberMaxAttempts; attempt++ {
		order.ID = uuid.Nil
		order.OrderNumber = NewNumber(s.cfg.NumberPrefix, time.Now().UTC())
		created, err := s.repo.Create(ctx, order)
		if err == nil {
			return created, nil
		}
		if !db.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not assign a unique order number")
}

// findOwned resolves an order scoped to the given seller. Another seller's
// order reads as not found, so ids cannot be probed.
func (s *service) findOwned(ctx context.Context, sellerID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order")
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return order, nil
}

func transitionConflict(from, to enums.OrderStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("order cannot move from %s to %s", from, to))
}
