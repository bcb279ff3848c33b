package delivery

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestShipResultJSONShape(t *testing.T) {
	share := "https://share.test/lm_1"
	result := ShipResult{
		OrderID:      uuid.New(),
		CarrierRef:   "lm_1",
		ShareURL:     &share,
		DeliveryFee:  105,
		DeliveryCost: 88,
		Profit:       17,
	}
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"lalamove_order_id", "share_link", "delivery_cost", "delivery_fee", "profit"} {
		if _, ok := got[key]; !ok {
			t.Fatalf("response is missing %q: %s", key, raw)
		}
	}
	if _, ok := got["is_mock"]; ok {
		t.Fatalf("is_mock must be omitted for carrier bookings: %s", raw)
	}

	raw, err = json.Marshal(ShipResult{CarrierRef: "mock_abc", IsMock: true, DeliveryFee: 105, Profit: 105})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var mock map[string]any
	if err := json.Unmarshal(raw, &mock); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mock["is_mock"] != true {
		t.Fatalf("mock shipments must be flagged: %s", raw)
	}
	if _, ok := mock["share_link"]; ok {
		t.Fatalf("share_link must be omitted when the carrier gave none: %s", raw)
	}
}
