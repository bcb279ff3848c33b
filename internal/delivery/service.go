package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/enums"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
	"github.com/tapshop/tapshop-backend/pkg/lalamove"
	"github.com/tapshop/tapshop-backend/pkg/logger"
	"github.com/tapshop/tapshop-backend/pkg/metrics"
	"github.com/tapshop/tapshop-backend/pkg/validation"
)

// Default pickup coordinates (central Bangkok) used when a seller has an
// address but no stored pin.
const (
	defaultPickupLat = 13.7563
	defaultPickupLng = 100.5018
)

const (
	sourceCarrier = "carrier"
	sourceMock    = "mock"
)

type carrier interface {
	IsConfigured() bool
	Quote(ctx context.Context, req lalamove.QuoteRequest) (*lalamove.Quotation, error)
	Book(ctx context.Context, req lalamove.BookRequest) (*lalamove.Booking, error)
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

type shipmentWriter interface {
	// MarkShipped flips a confirmed order to shipped, recording the booking
	// reference and the carrier's booking-time cost. Returns false when the
	// order was not in confirmed state.
	MarkShipped(ctx context.Context, orderID uuid.UUID, carrierRef string, shareURL *string, deliveryCost *int) (bool, error)
	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
}

// Service prices deliveries and books confirmed orders with the carrier.
type Service interface {
	Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error)
	Ship(ctx context.Context, order *models.Order, seller *models.Seller) (*ShipResult, error)
}

type service struct {
	carrier   carrier
	sellers   sellerLoader
	shipments shipmentWriter
	metrics   *metrics.DeliveryMetrics
	logg      *logger.Logger
}

// NewService builds the delivery service.
func NewService(c carrier, sellers sellerLoader, shipments shipmentWriter, m *metrics.DeliveryMetrics, logg *logger.Logger) (Service, error) {
	if c == nil {
		return nil, fmt.Errorf("carrier client required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller loader required")
	}
	if shipments == nil {
		return nil, fmt.Errorf("shipment writer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{carrier: c, sellers: sellers, shipments: shipments, metrics: m, logg: logg}, nil
}

// Quote returns the buyer-facing delivery fee for a destination. The seller
// must have a pickup address configured; from there any carrier failure
// degrades to a mock quote so checkout never blocks on the carrier.
func (s *service) Quote(ctx context.Context, input QuoteInput) (*QuoteResult, error) {
	address, err := validation.ValidateAddress(input.BuyerAddress)
	if err != nil {
		return nil, err
	}
	seller, err := s.sellers.FindByID(ctx, input.SellerID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}

	if !seller.CanShip() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller has no pickup address configured")
	}

	started := time.Now()
	quotation, err := s.carrier.Quote(ctx, lalamove.QuoteRequest{
		Pickup:  pickupStop(seller),
		Dropoff: dropoffStop(address, input.BuyerLat, input.BuyerLng),
	})
	s.metrics.ObserveQuoteDuration(sourceCarrier, time.Since(started))
	if err != nil {
		return s.mockQuote(ctx, err.Error()), nil
	}
	s.metrics.IncQuote(sourceCarrier)

	return &QuoteResult{
		DeliveryFee: BuyerFee(quotation.Amount),
		QuotationID: quotation.ID,
		IsMock:      false,
	}, nil
}

// Ship books a confirmed order out for delivery. The booking always uses a
// fresh quote taken inside this call; the checkout-time fee is only the COD
// amount and the profit baseline.
func (s *service) Ship(ctx context.Context, order *models.Order, seller *models.Seller) (*ShipResult, error) {
	if order == nil || seller == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "order and seller are required")
	}
	if order.OrderStatus != enums.OrderStatusConfirmed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, only confirmed orders can ship", order.OrderStatus))
	}
	if !seller.CanShip() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "seller has no pickup address")
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)

	started := time.Now()
	quotation, err := s.carrier.Quote(ctx, lalamove.QuoteRequest{
		Pickup:  pickupStop(seller),
		Dropoff: dropoffStop(order.BuyerAddress, order.BuyerLat, order.BuyerLng),
	})
	s.metrics.ObserveQuoteDuration(sourceCarrier, time.Since(started))
	if err != nil {
		// Carrier missing or unreachable: ship on paper so the seller can
		// hand the package to any driver.
		s.logg.Warn(ctx, fmt.Sprintf("carrier quote failed, shipping as mock: %v", err))
		return s.mockShip(ctx, order)
	}

	booking, err := s.carrier.Book(ctx, lalamove.BookRequest{
		QuotationID:   quotation.ID,
		PickupStopID:  quotation.PickupStopID,
		DropoffStopID: quotation.DropoffStopID,
		Sender:        lalamove.Contact{Name: seller.ShopName, Phone: seller.Phone},
		Recipient:     lalamove.Contact{Name: order.BuyerName, Phone: order.BuyerPhone},
		Remarks:       fmt.Sprintf("Order %s", order.OrderNumber),
		CODAmount:     order.CODAmount(),
	})
	if err != nil {
		s.metrics.IncBookingFailure(sourceCarrier)
		if errors.Is(err, lalamove.ErrUnreachable) {
			// The carrier may or may not have accepted the order. Never
			// retry automatically; leave the order confirmed for manual
			// reconciliation.
			s.logg.Error(ctx, "carrier booking outcome unknown", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "booking outcome unknown, reconcile with carrier before retrying")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "carrier rejected booking")
	}

	var shareURL *string
	if booking.ShareURL != "" {
		shareURL = &booking.ShareURL
	}

	cost := quotation.Amount
	updated, err := s.shipments.MarkShipped(ctx, order.ID, booking.OrderRef, shareURL, &cost)
	if err != nil {
		s.metrics.IncBookingFailure(sourceCarrier)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist shipment")
	}
	if !updated {
		// A racing ship call won after we booked. Surface the orphaned
		// booking instead of silently double-charging.
		s.metrics.IncBookingFailure(sourceCarrier)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already shipped").WithDetails(map[string]any{
			"orphaned_booking": booking.OrderRef,
		})
	}

	profit := order.DeliveryFee - quotation.Amount
	record := &models.Delivery{
		OrderID:         order.ID,
		CarrierRef:      booking.OrderRef,
		Status:          booking.Status,
		PickupAddress:   *seller.PickupAddress,
		DeliveryAddress: order.BuyerAddress,
		QuotedFee:       order.DeliveryFee,
		ActualCost:      quotation.Amount,
		Profit:          profit,
		ShareURL:        shareURL,
	}
	if err := s.shipments.CreateDelivery(ctx, record); err != nil {
		// The order is shipped and booked; a missing ledger row is bad but
		// not worth failing the handoff over.
		s.logg.Error(ctx, "record delivery ledger row", err)
	}

	s.metrics.IncBookingSuccess(sourceCarrier)
	s.logg.Info(ctx, fmt.Sprintf("order shipped via carrier %s (profit %d)", booking.OrderRef, profit))

	return &ShipResult{
		OrderID:      order.ID,
		CarrierRef:   booking.OrderRef,
		ShareURL:     shareURL,
		IsMock:       false,
		DeliveryFee:  order.DeliveryFee,
		DeliveryCost: quotation.Amount,
		Profit:       profit,
	}, nil
}

func (s *service) mockQuote(ctx context.Context, reason string) *QuoteResult {
	s.metrics.IncQuote(sourceMock)
	s.logg.Warn(ctx, fmt.Sprintf("serving mock delivery quote: %s", reason))
	return &QuoteResult{
		DeliveryFee: MockFee(),
		QuotationID: MockQuotationID(),
		IsMock:      true,
	}
}

func (s *service) mockShip(ctx context.Context, order *models.Order) (*ShipResult, error) {
	ref := MockQuotationID()
	updated, err := s.shipments.MarkShipped(ctx, order.ID, ref, nil, nil)
	if err != nil {
		s.metrics.IncBookingFailure(sourceMock)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist shipment")
	}
	if !updated {
		s.metrics.IncBookingFailure(sourceMock)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already shipped")
	}
	s.metrics.IncBookingSuccess(sourceMock)

	return &ShipResult{
		OrderID:      order.ID,
		CarrierRef:   ref,
		IsMock:       true,
		DeliveryFee:  order.DeliveryFee,
		DeliveryCost: 0,
		Profit:       order.DeliveryFee,
	}, nil
}

func pickupStop(seller *models.Seller) lalamove.Stop {
	stop := lalamove.Stop{
		Lat:     defaultPickupLat,
		Lng:     defaultPickupLng,
		Address: *seller.PickupAddress,
	}
	if seller.PickupLat != nil && seller.PickupLng != nil {
		stop.Lat = *seller.PickupLat
		stop.Lng = *seller.PickupLng
	}
	return stop
}

func dropoffStop(address string, lat, lng *float64) lalamove.Stop {
	stop := lalamove.Stop{
		Lat:     defaultPickupLat,
		Lng:     defaultPickupLng,
		Address: address,
	}
	if lat != nil && lng != nil {
		stop.Lat = *lat
		stop.Lng = *lng
	}
	return stop
}
