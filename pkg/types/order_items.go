package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OrderItem is one frozen line of an order's product snapshot. Product edits
// after checkout never reach rows already written.
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Quantity  int       `json:"quantity"`
}

// OrderItems stores the snapshot as a jsonb column.
type OrderItems []OrderItem

// Value marshals the snapshot for persistence.
func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("order items: marshal %w", err)
	}
	return string(raw), nil
}

// Scan decodes the stored jsonb payload.
func (o *OrderItems) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("order items: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*o = nil
		return nil
	}
	return json.Unmarshal(raw, o)
}

// Subtotal sums price times quantity across the snapshot.
func (o OrderItems) Subtotal() int {
	total := 0
	for _, item := range o {
		total += item.Price * item.Quantity
	}
	return total
}
