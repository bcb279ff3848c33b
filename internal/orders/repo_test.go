package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/enums"
	"github.com/tapshop/tapshop-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  buyer_name TEXT NOT NULL,
  buyer_phone TEXT NOT NULL,
  buyer_address TEXT NOT NULL,
  buyer_lat REAL,
  buyer_lng REAL,
  items TEXT NOT NULL,
  subtotal INTEGER NOT NULL,
  delivery_fee INTEGER NOT NULL,
  total INTEGER NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'promptpay',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  order_status TEXT NOT NULL DEFAULT 'pending',
  carrier_ref TEXT,
  share_url TEXT,
  delivery_cost INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number);
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  carrier_ref TEXT NOT NULL,
  status TEXT NOT NULL,
  pickup_address TEXT NOT NULL,
  delivery_address TEXT NOT NULL,
  quoted_fee INTEGER NOT NULL,
  actual_cost INTEGER NOT NULL,
  profit INTEGER NOT NULL,
  share_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_deliveries_order_id ON deliveries(order_id);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newOrder(t *testing.T, db *gorm.DB, sellerID uuid.UUID, number string, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  number,
		SellerID:     sellerID,
		BuyerName:    "Somchai J.",
		BuyerPhone:   "0812345678",
		BuyerAddress: "99/1 Sukhumvit Rd, Khlong Toei, Bangkok 10110",
		Items: types.OrderItems{
			{ProductID: uuid.New(), Name: "Matcha kit", Price: 450, Quantity: 1},
		},
		Subtotal:      450,
		DeliveryFee:   105,
		Total:         555,
		PaymentMethod: enums.PaymentMethodPromptPay,
		PaymentStatus: enums.PaymentStatusPending,
		OrderStatus:   status,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestCreateRejectsDuplicateOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	sellerID := uuid.New()

	newOrder(t, db, sellerID, "TS-20260115-A1B2", enums.OrderStatusPending)

	dup := &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "TS-20260115-A1B2",
		SellerID:     sellerID,
		BuyerName:    "Nok",
		BuyerPhone:   "0898765432",
		BuyerAddress: "12 Rama IV Rd, Pathum Wan, Bangkok 10330",
		Items:        types.OrderItems{},
		Total:        0,
	}
	_, err := repo.Create(ctx, dup)
	require.Error(t, err)
}

func TestListBySellerNewestFirstWithStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	sellerID := uuid.New()

	first := newOrder(t, db, sellerID, "TS-20260115-0001", enums.OrderStatusPending)
	second := newOrder(t, db, sellerID, "TS-20260115-0002", enums.OrderStatusConfirmed)
	require.NoError(t, db.Model(first).Update("created_at", "2026-01-15 09:00:00").Error)
	require.NoError(t, db.Model(second).Update("created_at", "2026-01-15 10:00:00").Error)
	newOrder(t, db, uuid.New(), "TS-20260115-0003", enums.OrderStatusPending)

	all, err := repo.ListBySeller(ctx, sellerID, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "TS-20260115-0002", all[0].OrderNumber)
	require.Equal(t, "TS-20260115-0001", all[1].OrderNumber)

	confirmed := enums.OrderStatusConfirmed
	filtered, err := repo.ListBySeller(ctx, sellerID, &confirmed)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, second.ID, filtered[0].ID)
}

func TestConfirmPaymentIsConditional(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, uuid.New(), "TS-20260115-0004", enums.OrderStatusPending)

	moved, err := repo.ConfirmPayment(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, moved)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, reloaded.OrderStatus)
	require.Equal(t, enums.PaymentStatusConfirmed, reloaded.PaymentStatus)

	// Second confirm finds no pending row.
	moved, err = repo.ConfirmPayment(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, moved)
}

func TestMarkShippedRecordsBookingAndGuardsRaces(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, uuid.New(), "TS-20260115-0005", enums.OrderStatusConfirmed)
	share := "https://share.lalamove.com/abc"
	cost := 87

	moved, err := repo.MarkShipped(ctx, order.ID, "LM-111", &share, &cost)
	require.NoError(t, err)
	require.True(t, moved)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, reloaded.OrderStatus)
	require.NotNil(t, reloaded.CarrierRef)
	require.Equal(t, "LM-111", *reloaded.CarrierRef)
	require.NotNil(t, reloaded.ShareURL)
	require.Equal(t, share, *reloaded.ShareURL)
	require.NotNil(t, reloaded.DeliveryCost)
	require.Equal(t, 87, *reloaded.DeliveryCost)

	// The losing racer sees zero rows updated.
	moved, err = repo.MarkShipped(ctx, order.ID, "LM-222", nil, nil)
	require.NoError(t, err)
	require.False(t, moved)

	reloaded, err = repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "LM-111", *reloaded.CarrierRef)
}

func TestMarkDeliveredRequiresShipped(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pending := newOrder(t, db, uuid.New(), "TS-20260115-0006", enums.OrderStatusPending)
	moved, err := repo.MarkDelivered(ctx, pending.ID)
	require.NoError(t, err)
	require.False(t, moved)

	shipped := newOrder(t, db, uuid.New(), "TS-20260115-0007", enums.OrderStatusShipped)
	moved, err = repo.MarkDelivered(ctx, shipped.ID)
	require.NoError(t, err)
	require.True(t, moved)
}

func TestCancelMatchesExpectedStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, uuid.New(), "TS-20260115-0008", enums.OrderStatusConfirmed)

	moved, err := repo.Cancel(ctx, order.ID, enums.OrderStatusPending)
	require.NoError(t, err)
	require.False(t, moved)

	moved, err = repo.Cancel(ctx, order.ID, enums.OrderStatusConfirmed)
	require.NoError(t, err)
	require.True(t, moved)

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, reloaded.OrderStatus)
}

func TestDeliveryLedgerRoundTrip(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, uuid.New(), "TS-20260115-0009", enums.OrderStatusShipped)
	share := "https://share.lalamove.com/xyz"

	require.NoError(t, repo.CreateDelivery(ctx, &models.Delivery{
		ID:              uuid.New(),
		OrderID:         order.ID,
		CarrierRef:      "LM-333",
		Status:          "ASSIGNING_DRIVER",
		PickupAddress:   "55/5 Ratchada Soi 7, Din Daeng, Bangkok 10400",
		DeliveryAddress: order.BuyerAddress,
		QuotedFee:       105,
		ActualCost:      87,
		Profit:          18,
		ShareURL:        &share,
	}))

	ledger, err := repo.FindDeliveryByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, "LM-333", ledger.CarrierRef)
	require.Equal(t, "ASSIGNING_DRIVER", ledger.Status)
	require.Equal(t, order.BuyerAddress, ledger.DeliveryAddress)
	require.Equal(t, 105, ledger.QuotedFee)
	require.Equal(t, 87, ledger.ActualCost)
	require.Equal(t, 18, ledger.Profit)

	// One ledger row per order.
	err = repo.CreateDelivery(ctx, &models.Delivery{
		ID:         uuid.New(),
		OrderID:    order.ID,
		CarrierRef: "LM-444",
	})
	require.Error(t, err)
}

func TestFindByOrderNumber(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := newOrder(t, db, uuid.New(), "TS-20260115-0010", enums.OrderStatusPending)

	found, err := repo.FindByOrderNumber(ctx, "TS-20260115-0010")
	require.NoError(t, err)
	require.Equal(t, order.ID, found.ID)

	_, err = repo.FindByOrderNumber(ctx, "TS-20260115-ZZZZ")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
