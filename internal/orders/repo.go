package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/enums"
)

// Repository handles order and delivery-ledger persistence. All lifecycle
// moves are conditional on the expected current status so racing writers
// cannot double-apply a transition; callers get false when they lost.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to order operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order == nil {
		return nil, fmt.Errorf("order is required")
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByOrderNumber loads an order by its buyer-facing number.
func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListBySeller returns a seller's orders newest first, optionally filtered to
// one status.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC")
	if status != nil {
		query = query.Where("order_status = ?", *status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ConfirmPayment flips a pending order to confirmed, marking the payment
// confirmed in the same write. Returns false when the order was not pending.
func (r *Repository) ConfirmPayment(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, enums.OrderStatusPending, map[string]interface{}{
		"order_status":   enums.OrderStatusConfirmed,
		"payment_status": enums.PaymentStatusConfirmed,
	})
}

// MarkShipped flips a confirmed order to shipped, recording the carrier
// booking reference, tracking link and booking-time cost. Returns false when
// the order was not confirmed, so two racing ship calls can never both book.
// deliveryCost is nil for mock shipments, which have no carrier side.
func (r *Repository) MarkShipped(ctx context.Context, id uuid.UUID, carrierRef string, shareURL *string, deliveryCost *int) (bool, error) {
	return r.transition(ctx, id, enums.OrderStatusConfirmed, map[string]interface{}{
		"order_status":  enums.OrderStatusShipped,
		"carrier_ref":   carrierRef,
		"share_url":     shareURL,
		"delivery_cost": deliveryCost,
	})
}

// MarkDelivered flips a shipped order to delivered. Returns false when the
// order was not shipped.
func (r *Repository) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.transition(ctx, id, enums.OrderStatusShipped, map[string]interface{}{
		"order_status": enums.OrderStatusDelivered,
	})
}

// Cancel moves an order to cancelled from the given expected status. The
// caller decides whether the current status permits cancellation.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, expected enums.OrderStatus) (bool, error) {
	return r.transition(ctx, id, expected, map[string]interface{}{
		"order_status": enums.OrderStatusCancelled,
	})
}

func (r *Repository) transition(ctx context.Context, id uuid.UUID, expected enums.OrderStatus, updates map[string]interface{}) (bool, error) {
	updates["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND order_status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CreateDelivery inserts the booking ledger row for a shipped order.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	if delivery == nil {
		return fmt.Errorf("delivery is required")
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

// FindDeliveryByOrderID loads the booking ledger row for an order.
func (r *Repository) FindDeliveryByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&delivery).Error; err != nil {
		return nil, err
	}
	return &delivery, nil
}
