package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tapshop/tapshop-backend/pkg/redis"
)

// ErrCartNotFound is returned when no cart is stored for the key.
var ErrCartNotFound = errors.New("cart not found")

// Store is the KV surface carts persist through.
type Store interface {
	Get(ctx context.Context, buyerToken string, sellerID uuid.UUID) (*Cart, error)
	Set(ctx context.Context, buyerToken string, cart *Cart) error
	Remove(ctx context.Context, buyerToken string, sellerID uuid.UUID) error
}

type kvClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(buyerToken, sellerID string) string
}

type redisStore struct {
	client kvClient
	ttl    time.Duration
}

// NewRedisStore persists carts in redis under a per-buyer, per-shop key with
// a sliding TTL.
func NewRedisStore(client kvClient, ttl time.Duration) (Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &redisStore{client: client, ttl: ttl}, nil
}

func (s *redisStore) Get(ctx context.Context, buyerToken string, sellerID uuid.UUID) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(buyerToken, sellerID.String()))
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// A corrupt payload is unrecoverable; treat it as absent.
		return nil, ErrCartNotFound
	}
	return &cart, nil
}

func (s *redisStore) Set(ctx context.Context, buyerToken string, cart *Cart) error {
	if cart == nil {
		return fmt.Errorf("cart is required")
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	key := s.client.CartKey(buyerToken, cart.SellerID.String())
	if err := s.client.Set(ctx, key, string(payload), s.ttl); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, buyerToken string, sellerID uuid.UUID) error {
	if err := s.client.Del(ctx, s.client.CartKey(buyerToken, sellerID.String())); err != nil {
		return fmt.Errorf("remove cart: %w", err)
	}
	return nil
}
