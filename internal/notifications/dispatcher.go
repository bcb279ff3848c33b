package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

const pushTimeout = 10 * time.Second

type pusher interface {
	IsConfigured() bool
	Push(ctx context.Context, to, text string) error
}

type sellerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Seller, error)
}

// Dispatcher delivers LINE pushes off the request path. Enqueue never blocks:
// when the queue is full the notification is dropped with a warning, because
// checkout must not wait on a chat API.
type Dispatcher struct {
	pusher  pusher
	sellers sellerLoader
	logg    *logger.Logger

	queue chan OrderSummary
	done  chan struct{}

	mu     sync.Mutex
	closed bool
	errs   error
}

func NewDispatcher(p pusher, sellers sellerLoader, logg *logger.Logger, queueSize int) (*Dispatcher, error) {
	if p == nil {
		return nil, fmt.Errorf("pusher is required")
	}
	if sellers == nil {
		return nil, fmt.Errorf("seller loader is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if queueSize <= 0 {
		return nil, fmt.Errorf("queue size must be positive, got %d", queueSize)
	}

	d := &Dispatcher{
		pusher:  p,
		sellers: sellers,
		logg:    logg,
		queue:   make(chan OrderSummary, queueSize),
		done:    make(chan struct{}),
	}
	go d.run()
	return d, nil
}

// EnqueueNewOrder queues a seller notification for the given order. Safe to
// call from request handlers; drops (with a warning) rather than blocking.
func (d *Dispatcher) EnqueueNewOrder(ctx context.Context, order OrderSummary) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logg.Warn(d.logg.WithOrderNumber(ctx, order.OrderNumber), "notification dispatcher closed, dropping new-order push")
		return
	}
	select {
	case d.queue <- order:
		d.mu.Unlock()
	default:
		d.mu.Unlock()
		d.logg.Warn(d.logg.WithOrderNumber(ctx, order.OrderNumber), "notification queue full, dropping new-order push")
	}
}

// Close drains the queue and stops the worker. It returns the accumulated
// delivery errors so shutdown logs carry anything the worker could not send.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for order := range d.queue {
		if err := d.deliverNewOrder(order); err != nil {
			ctx := d.logg.WithOrderNumber(context.Background(), order.OrderNumber)
			d.logg.Error(ctx, "new-order notification failed", err)
			d.mu.Lock()
			d.errs = multierr.Append(d.errs, fmt.Errorf("order %s: %w", order.OrderNumber, err))
			d.mu.Unlock()
		}
	}
}

func (d *Dispatcher) deliverNewOrder(order OrderSummary) error {
	if !d.pusher.IsConfigured() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	seller, err := d.sellers.FindByID(ctx, order.SellerID)
	if err != nil {
		return fmt.Errorf("load seller: %w", err)
	}
	if seller.LineUserID == nil || *seller.LineUserID == "" {
		// Seller never linked LINE; nothing to push.
		return nil
	}

	return d.pusher.Push(ctx, *seller.LineUserID, FormatNewOrder(order))
}
