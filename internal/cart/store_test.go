package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type fakeKV struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.data, key)
	}
	return nil
}

func (f *fakeKV) CartKey(buyerToken, sellerID string) string {
	return "ts:cart:" + buyerToken + ":" + sellerID
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	sellerID := uuid.New()

	cart := New(sellerID)
	cart.Items = []Item{{ProductID: uuid.New(), Name: "Tea", Price: 45, Quantity: 2}}
	if err := store.Set(ctx, "buyer-1", cart); err != nil {
		t.Fatalf("set: %v", err)
	}

	key := kv.CartKey("buyer-1", sellerID.String())
	if kv.ttls[key] != time.Hour {
		t.Fatalf("expected ttl applied, got %v", kv.ttls[key])
	}

	loaded, err := store.Get(ctx, "buyer-1", sellerID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Total() != 90 {
		t.Fatalf("expected total 90, got %d", loaded.Total())
	}

	if err := store.Remove(ctx, "buyer-1", sellerID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := store.Get(ctx, "buyer-1", sellerID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestRedisStoreCorruptPayloadReadsAsMissing(t *testing.T) {
	kv := newFakeKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sellerID := uuid.New()
	kv.data[kv.CartKey("buyer-1", sellerID.String())] = "{not json"

	if _, err := store.Get(context.Background(), "buyer-1", sellerID); !errors.Is(err, ErrCartNotFound) {
		t.Fatalf("expected ErrCartNotFound for corrupt payload, got %v", err)
	}
}

func TestNewRedisStoreValidatesArgs(t *testing.T) {
	if _, err := NewRedisStore(nil, time.Hour); err == nil {
		t.Fatal("expected error without client")
	}
	if _, err := NewRedisStore(newFakeKV(), 0); err == nil {
		t.Fatal("expected error without ttl")
	}
}
