package validators

import (
	"net/http"
	"strings"

	"github.com/tapshop/tapshop-backend/pkg/enums"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
)

// ParseOrderStatusQuery reads an optional order-status filter from the query
// string. Absent means no filter.
func ParseOrderStatusQuery(r *http.Request, key string) (*enums.OrderStatus, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	status, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return &status, nil
}
