package delivery

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/enums"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/lalamove"
	"github.com/tapshop/tapshop-backend/pkg/logger"
	"github.com/tapshop/tapshop-backend/pkg/metrics"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testDeliveryService(t *testing.T, c carrier, sellers sellerLoader, shipments shipmentWriter) Service {
	t.Helper()
	svc, err := NewService(c, sellers, shipments, metrics.NewDeliveryMetrics(nil), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func shippableSeller() *models.Seller {
	addr := "55/5 Ratchada Soi 7, Din Daeng, Bangkok 10400"
	lat, lng := 13.77, 100.57
	return &models.Seller{
		ID:            uuid.New(),
		Phone:         "0812345678",
		ShopName:      "Mali Flowers",
		ShopSlug:      "mali-flowers",
		PickupAddress: &addr,
		PickupLat:     &lat,
		PickupLng:     &lng,
	}
}

func confirmedOrder() *models.Order {
	return &models.Order{
		ID:           uuid.New(),
		OrderNumber:  "TS-20260110-AB12",
		SellerID:     uuid.New(),
		BuyerName:    "Nok",
		BuyerPhone:   "0898765432",
		BuyerAddress: "99/1 Sukhumvit Soi 33, Watthana, Bangkok 10110",
		Subtotal:     200,
		DeliveryFee:  105,
		Total:        305,
		OrderStatus:  enums.OrderStatusConfirmed,
	}
}

func TestQuoteAppliesMarkup(t *testing.T) {
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_1", Amount: 87, PickupStopID: "a", DropoffStopID: "b"},
	}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, &stubShipments{})

	result, err := svc.Quote(context.Background(), QuoteInput{
		SellerID:     seller.ID,
		BuyerAddress: "99/1 Sukhumvit Soi 33, Watthana, Bangkok 10110",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if result.IsMock {
		t.Fatal("expected carrier quote")
	}
	if result.DeliveryFee != 105 {
		t.Fatalf("expected 87 marked up to 105, got %d", result.DeliveryFee)
	}
	if result.QuotationID != "q_1" {
		t.Fatalf("unexpected quotation id %q", result.QuotationID)
	}
}

func TestQuoteFallsBackToMock(t *testing.T) {
	cases := []struct {
		name    string
		carrier *stubCarrier
	}{
		{name: "not configured", carrier: &stubCarrier{quoteErr: lalamove.ErrNotConfigured}},
		{name: "unreachable", carrier: &stubCarrier{configured: true, quoteErr: lalamove.ErrUnreachable}},
		{name: "carrier rejected", carrier: &stubCarrier{configured: true, quoteErr: lalamove.ErrUnavailable}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seller := shippableSeller()
			svc := testDeliveryService(t, tc.carrier, stubSellers{seller: seller}, &stubShipments{})
			result, err := svc.Quote(context.Background(), QuoteInput{
				SellerID:     seller.ID,
				BuyerAddress: "99/1 Sukhumvit Soi 33, Watthana, Bangkok 10110",
			})
			if err != nil {
				t.Fatalf("quote must not fail: %v", err)
			}
			if !result.IsMock {
				t.Fatal("expected mock quote")
			}
			if !strings.HasPrefix(result.QuotationID, "mock_") {
				t.Fatalf("expected mock_ quotation id, got %q", result.QuotationID)
			}
			if result.DeliveryFee < 50 || result.DeliveryFee > 150 || result.DeliveryFee%5 != 0 {
				t.Fatalf("mock fee %d outside expected range", result.DeliveryFee)
			}
		})
	}
}

func TestQuoteObservesCarrierLatencyOnFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	seller := shippableSeller()
	c := &stubCarrier{configured: true, quoteErr: lalamove.ErrUnreachable}
	svc, err := NewService(c, stubSellers{seller: seller}, &stubShipments{}, metrics.NewDeliveryMetrics(registry), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Quote(context.Background(), QuoteInput{
		SellerID:     seller.ID,
		BuyerAddress: "99/1 Sukhumvit Soi 33, Watthana, Bangkok 10110",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !result.IsMock {
		t.Fatal("expected mock quote")
	}

	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := quoteDurationSampleCount(mfs, "carrier"); got != 1 {
		t.Fatalf("failed carrier attempt must still be observed, got %d samples", got)
	}
}

func quoteDurationSampleCount(mfs []*dto.MetricFamily, source string) uint64 {
	for _, mf := range mfs {
		if mf.GetName() != "delivery_quote_duration_seconds" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "source" && label.GetValue() == source {
					return metric.GetHistogram().GetSampleCount()
				}
			}
		}
	}
	return 0
}

func TestQuoteRequiresPickupAddress(t *testing.T) {
	seller := &models.Seller{ID: uuid.New(), ShopName: "No Pickup"}
	svc := testDeliveryService(t, &stubCarrier{configured: true}, stubSellers{seller: seller}, &stubShipments{})
	_, err := svc.Quote(context.Background(), QuoteInput{
		SellerID:     seller.ID,
		BuyerAddress: "99/1 Sukhumvit Soi 33, Watthana, Bangkok 10110",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuoteRejectsBadAddress(t *testing.T) {
	svc := testDeliveryService(t, &stubCarrier{}, stubSellers{seller: shippableSeller()}, &stubShipments{})
	_, err := svc.Quote(context.Background(), QuoteInput{SellerID: uuid.New(), BuyerAddress: "Bangkok"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestShipSuccessRecordsDeliveryAndProfit(t *testing.T) {
	order := confirmedOrder()
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_2", Amount: 88, PickupStopID: "a", DropoffStopID: "b"},
		booking:    &lalamove.Booking{OrderRef: "lm_789", ShareURL: "https://share.test/lm_789", Status: "ASSIGNING_DRIVER"},
	}
	shipments := &stubShipments{markShippedOK: true}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	result, err := svc.Ship(context.Background(), order, seller)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if result.IsMock {
		t.Fatal("expected carrier booking")
	}
	if result.Profit != 105-88 {
		t.Fatalf("expected profit 17, got %d", result.Profit)
	}
	if c.bookReq.CODAmount != order.DeliveryFee {
		t.Fatalf("COD must equal checkout delivery fee, got %d", c.bookReq.CODAmount)
	}
	if c.bookReq.QuotationID != "q_2" {
		t.Fatalf("booking must use the fresh quotation, got %q", c.bookReq.QuotationID)
	}
	if shipments.deliveryCost == nil || *shipments.deliveryCost != 88 {
		t.Fatalf("order must record the booking-time cost, got %v", shipments.deliveryCost)
	}
	if shipments.delivery == nil {
		t.Fatal("expected delivery ledger row")
	}
	if shipments.delivery.QuotedFee != 105 || shipments.delivery.ActualCost != 88 || shipments.delivery.Profit != 17 {
		t.Fatalf("unexpected ledger row %+v", shipments.delivery)
	}
	if shipments.delivery.Status != "ASSIGNING_DRIVER" {
		t.Fatalf("ledger must mirror the booking status, got %q", shipments.delivery.Status)
	}
	if shipments.delivery.PickupAddress != *seller.PickupAddress {
		t.Fatalf("unexpected pickup address %q", shipments.delivery.PickupAddress)
	}
	if shipments.delivery.DeliveryAddress != order.BuyerAddress {
		t.Fatalf("unexpected delivery address %q", shipments.delivery.DeliveryAddress)
	}
}

func TestShipAllowsNegativeProfit(t *testing.T) {
	order := confirmedOrder() // checkout fee 105
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_3", Amount: 140, PickupStopID: "a", DropoffStopID: "b"},
		booking:    &lalamove.Booking{OrderRef: "lm_790"},
	}
	shipments := &stubShipments{markShippedOK: true}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	result, err := svc.Ship(context.Background(), order, seller)
	if err != nil {
		t.Fatalf("market moving against us is not an error: %v", err)
	}
	if result.Profit != -35 {
		t.Fatalf("expected profit -35, got %d", result.Profit)
	}
}

func TestShipMockPathLeavesNoDeliveryRow(t *testing.T) {
	order := confirmedOrder()
	seller := shippableSeller()
	c := &stubCarrier{quoteErr: lalamove.ErrNotConfigured}
	shipments := &stubShipments{markShippedOK: true}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	result, err := svc.Ship(context.Background(), order, seller)
	if err != nil {
		t.Fatalf("ship: %v", err)
	}
	if !result.IsMock {
		t.Fatal("expected mock shipment")
	}
	if !strings.HasPrefix(result.CarrierRef, "mock_") {
		t.Fatalf("expected mock_ booking ref, got %q", result.CarrierRef)
	}
	if shipments.delivery != nil {
		t.Fatal("mock shipment must not write a delivery row")
	}
	if shipments.deliveryCost != nil {
		t.Fatal("mock shipment has no carrier cost to record")
	}
}

func TestShipRequiresConfirmedOrder(t *testing.T) {
	order := confirmedOrder()
	order.OrderStatus = enums.OrderStatusPending
	svc := testDeliveryService(t, &stubCarrier{}, stubSellers{}, &stubShipments{})

	_, err := svc.Ship(context.Background(), order, shippableSeller())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestShipRequiresPickupAddress(t *testing.T) {
	svc := testDeliveryService(t, &stubCarrier{}, stubSellers{}, &stubShipments{})
	_, err := svc.Ship(context.Background(), confirmedOrder(), &models.Seller{ID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestShipRaceLoserGetsStateConflict(t *testing.T) {
	order := confirmedOrder()
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_4", Amount: 80, PickupStopID: "a", DropoffStopID: "b"},
		booking:    &lalamove.Booking{OrderRef: "lm_791"},
	}
	shipments := &stubShipments{markShippedOK: false}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	_, err := svc.Ship(context.Background(), order, seller)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for race loser, got %v", err)
	}
	if shipments.delivery != nil {
		t.Fatal("race loser must not write a delivery row")
	}
}

func TestShipBookingRejectionIsHardError(t *testing.T) {
	order := confirmedOrder()
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_5", Amount: 80, PickupStopID: "a", DropoffStopID: "b"},
		bookErr:    lalamove.ErrUnavailable,
	}
	shipments := &stubShipments{markShippedOK: true}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	_, err := svc.Ship(context.Background(), order, seller)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if shipments.markShippedCalls != 0 {
		t.Fatal("rejected booking must leave the order confirmed")
	}
}

func TestShipAmbiguousBookingIsNotRetried(t *testing.T) {
	order := confirmedOrder()
	seller := shippableSeller()
	c := &stubCarrier{
		configured: true,
		quote:      &lalamove.Quotation{ID: "q_6", Amount: 80, PickupStopID: "a", DropoffStopID: "b"},
		bookErr:    lalamove.ErrUnreachable,
	}
	shipments := &stubShipments{markShippedOK: true}
	svc := testDeliveryService(t, c, stubSellers{seller: seller}, shipments)

	_, err := svc.Ship(context.Background(), order, seller)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if c.bookCalls != 1 {
		t.Fatalf("ambiguous booking must not be retried, got %d attempts", c.bookCalls)
	}
	if shipments.markShippedCalls != 0 {
		t.Fatal("ambiguous booking must leave the order confirmed")
	}
}

type stubCarrier struct {
	configured bool
	quote      *lalamove.Quotation
	quoteErr   error
	booking    *lalamove.Booking
	bookErr    error
	bookReq    lalamove.BookRequest
	bookCalls  int
}

func (c *stubCarrier) IsConfigured() bool { return c.configured }

func (c *stubCarrier) Quote(ctx context.Context, req lalamove.QuoteRequest) (*lalamove.Quotation, error) {
	if c.quoteErr != nil {
		return nil, c.quoteErr
	}
	return c.quote, nil
}

func (c *stubCarrier) Book(ctx context.Context, req lalamove.BookRequest) (*lalamove.Booking, error) {
	c.bookCalls++
	c.bookReq = req
	if c.bookErr != nil {
		return nil, c.bookErr
	}
	return c.booking, nil
}

type stubSellers struct {
	seller *models.Seller
}

func (s stubSellers) FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error) {
	if s.seller == nil {
		return nil, context.Canceled
	}
	return s.seller, nil
}

type stubShipments struct {
	markShippedOK    bool
	markShippedCalls int
	markShippedErr   error
	deliveryCost     *int
	delivery         *models.Delivery
	deliveryErr      error
}

func (s *stubShipments) MarkShipped(ctx context.Context, orderID uuid.UUID, carrierRef string, shareURL *string, deliveryCost *int) (bool, error) {
	s.markShippedCalls++
	s.deliveryCost = deliveryCost
	if s.markShippedErr != nil {
		return false, s.markShippedErr
	}
	return s.markShippedOK, nil
}

func (s *stubShipments) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	if s.deliveryErr != nil {
		return s.deliveryErr
	}
	s.delivery = delivery
	return nil
}
