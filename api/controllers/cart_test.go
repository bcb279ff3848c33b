package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/api/middleware"
	cartsvc "github.com/tapshop/tapshop-backend/internal/cart"
)

type stubCartService struct {
	putItems []cartsvc.Item
	cart     *cartsvc.Cart
	cleared  bool
	err      error
}

func (s *stubCartService) Get(ctx context.Context, buyerToken string, sellerID uuid.UUID) (*cartsvc.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) Put(ctx context.Context, buyerToken string, sellerID uuid.UUID, items []cartsvc.Item) (*cartsvc.Cart, error) {
	s.putItems = items
	return s.cart, s.err
}

func (s *stubCartService) Clear(ctx context.Context, buyerToken string, sellerID uuid.UUID) error {
	s.cleared = true
	return s.err
}

func cartRequest(method, target string, body []byte, buyerToken string, sellerID string) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("sellerId", sellerID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	if buyerToken != "" {
		ctx = middleware.WithBuyerToken(ctx, buyerToken)
	}
	return req.WithContext(ctx)
}

func TestCartGet(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()

	t.Run("missing buyer token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := cartRequest(http.MethodGet, "/api/public/cart/"+sellerID.String(), nil, "", sellerID.String())
		CartGet(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without buyer token, got %d", rec.Code)
		}
	})

	t.Run("invalid seller id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := cartRequest(http.MethodGet, "/api/public/cart/not-a-uuid", nil, "buyer-1", "not-a-uuid")
		CartGet(&stubCartService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for a bad seller id, got %d", rec.Code)
		}
	})

	t.Run("empty cart serializes with empty items", func(t *testing.T) {
		stub := &stubCartService{cart: cartsvc.New(sellerID)}
		rec := httptest.NewRecorder()
		req := cartRequest(http.MethodGet, "/api/public/cart/"+sellerID.String(), nil, "buyer-1", sellerID.String())
		CartGet(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var envelope struct {
			Data cartResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.Items == nil {
			t.Fatalf("expected items to serialize as [], got null")
		}
		if envelope.Data.Total != 0 || envelope.Data.Count != 0 {
			t.Fatalf("expected an empty cart, got %+v", envelope.Data)
		}
	})
}

func TestCartPut(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()
	productID := uuid.New()

	stub := &stubCartService{cart: &cartsvc.Cart{
		SellerID: sellerID,
		Items:    []cartsvc.Item{{ProductID: productID, Name: "Pad Krapow", Price: 120, Quantity: 2}},
	}}
	body := []byte(`{"items": [{"product_id": "` + productID.String() + `", "quantity": 2}]}`)
	rec := httptest.NewRecorder()
	req := cartRequest(http.MethodPut, "/api/public/cart/"+sellerID.String(), body, "buyer-1", sellerID.String())
	CartPut(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(stub.putItems) != 1 || stub.putItems[0].Quantity != 2 {
		t.Fatalf("expected submitted lines to reach the service, got %+v", stub.putItems)
	}

	var envelope struct {
		Data cartResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != 240 || envelope.Data.Count != 2 {
		t.Fatalf("unexpected totals: %+v", envelope.Data)
	}
}

func TestCartDelete(t *testing.T) {
	logg := testLogger()
	sellerID := uuid.New()

	stub := &stubCartService{}
	rec := httptest.NewRecorder()
	req := cartRequest(http.MethodDelete, "/api/public/cart/"+sellerID.String(), nil, "buyer-1", sellerID.String())
	CartDelete(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !stub.cleared {
		t.Fatalf("expected Clear to be invoked")
	}
}
