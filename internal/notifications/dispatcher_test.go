package notifications

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapshop/tapshop-backend/pkg/db/models"
	"github.com/tapshop/tapshop-backend/pkg/logger"
)

type stubPusher struct {
	mu         sync.Mutex
	configured bool
	pushErr    error
	pushes     []pushedMessage
	gate       chan struct{}
}

type pushedMessage struct {
	to   string
	text string
}

func (p *stubPusher) IsConfigured() bool { return p.configured }

func (p *stubPusher) Push(_ context.Context, to, text string) error {
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, pushedMessage{to: to, text: text})
	return p.pushErr
}

func (p *stubPusher) sent() []pushedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]pushedMessage(nil), p.pushes...)
}

type stubSellers struct {
	seller *models.Seller
	err    error
}

func (s *stubSellers) FindByID(context.Context, uuid.UUID) (*models.Seller, error) {
	return s.seller, s.err
}

func testDispatcherLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "notifications-test", Output: io.Discard})
}

func linkedSeller(lineUserID string) *models.Seller {
	return &models.Seller{ID: uuid.New(), ShopName: "Test Shop", LineUserID: &lineUserID}
}

func testOrder() OrderSummary {
	return OrderSummary{
		SellerID:    uuid.New(),
		OrderNumber: "TS-20260115-A1B2",
		BuyerName:   "Somchai J.",
		Subtotal:    500,
		DeliveryFee: 105,
		Total:       605,
	}
}

func TestDispatcherPushesToLinkedSeller(t *testing.T) {
	p := &stubPusher{configured: true}
	d, err := NewDispatcher(p, &stubSellers{seller: linkedSeller("U1234")}, testDispatcherLogger(), 4)
	require.NoError(t, err)

	d.EnqueueNewOrder(context.Background(), testOrder())
	require.NoError(t, d.Close())

	sent := p.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "U1234", sent[0].to)
	assert.Contains(t, sent[0].text, "🛒 New Order! #TS-20260115-A1B2")
}

func TestDispatcherSkipsUnlinkedSeller(t *testing.T) {
	p := &stubPusher{configured: true}
	d, err := NewDispatcher(p, &stubSellers{seller: &models.Seller{ID: uuid.New()}}, testDispatcherLogger(), 4)
	require.NoError(t, err)

	d.EnqueueNewOrder(context.Background(), testOrder())
	require.NoError(t, d.Close())
	assert.Empty(t, p.sent())
}

func TestDispatcherSkipsWhenPusherNotConfigured(t *testing.T) {
	p := &stubPusher{configured: false}
	sellers := &stubSellers{err: errors.New("should not be called")}
	d, err := NewDispatcher(p, sellers, testDispatcherLogger(), 4)
	require.NoError(t, err)

	d.EnqueueNewOrder(context.Background(), testOrder())
	require.NoError(t, d.Close())
	assert.Empty(t, p.sent())
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	p := &stubPusher{configured: true, gate: make(chan struct{})}
	d, err := NewDispatcher(p, &stubSellers{seller: linkedSeller("U1234")}, testDispatcherLogger(), 1)
	require.NoError(t, err)

	ctx := context.Background()
	// First fill the worker, then the single queue slot, then overflow.
	d.EnqueueNewOrder(ctx, testOrder())
	waitForWorkerPickup(t, d)
	d.EnqueueNewOrder(ctx, testOrder())
	d.EnqueueNewOrder(ctx, testOrder())

	close(p.gate)
	require.NoError(t, d.Close())
	assert.Len(t, p.sent(), 2)
}

func TestDispatcherCloseReportsDeliveryErrors(t *testing.T) {
	p := &stubPusher{configured: true, pushErr: errors.New("line api down")}
	d, err := NewDispatcher(p, &stubSellers{seller: linkedSeller("U1234")}, testDispatcherLogger(), 4)
	require.NoError(t, err)

	d.EnqueueNewOrder(context.Background(), testOrder())
	err = d.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TS-20260115-A1B2")
	assert.Contains(t, err.Error(), "line api down")
}

func TestDispatcherEnqueueAfterCloseIsNoop(t *testing.T) {
	p := &stubPusher{configured: true}
	d, err := NewDispatcher(p, &stubSellers{seller: linkedSeller("U1234")}, testDispatcherLogger(), 4)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d.EnqueueNewOrder(context.Background(), testOrder())
	assert.Empty(t, p.sent())
	require.NoError(t, d.Close())
}

func TestNewDispatcherValidatesDeps(t *testing.T) {
	logg := testDispatcherLogger()
	sellers := &stubSellers{}

	_, err := NewDispatcher(nil, sellers, logg, 4)
	require.Error(t, err)

	_, err = NewDispatcher(&stubPusher{}, nil, logg, 4)
	require.Error(t, err)

	_, err = NewDispatcher(&stubPusher{}, sellers, nil, 4)
	require.Error(t, err)

	_, err = NewDispatcher(&stubPusher{}, sellers, logg, 0)
	require.Error(t, err)
}

// waitForWorkerPickup blocks until the worker has pulled the first message off
// the queue, so subsequent enqueues exercise the buffer rather than the worker.
func waitForWorkerPickup(t *testing.T, d *Dispatcher) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(d.queue) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("worker never picked up the queued message")
}
