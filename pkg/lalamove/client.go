package lalamove

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tapshop/tapshop-backend/pkg/config"
	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://rest.sandbox.lalamove.com"
	quotationsPath              = "/v3/quotations"
	ordersPath                  = "/v3/orders"
	defaultServiceType          = "MOTORCYCLE"
	defaultLanguage             = "th_TH"
	responseBodyReadLimit int64 = 2048
)

var (
	// ErrNotConfigured is returned when the client was built without
	// credentials. Callers treat it as "use the mock path".
	ErrNotConfigured = errors.New("lalamove client not configured")

	// ErrUnavailable is returned when the carrier answered but the response
	// is unusable (non-2xx, malformed payload, or a non-positive price).
	ErrUnavailable = errors.New("lalamove quote unavailable")

	// ErrUnreachable is returned when the carrier could not be reached at
	// all (network failure or timeout).
	ErrUnreachable = errors.New("lalamove unreachable")
)

// Stop is one leg endpoint of a delivery.
type Stop struct {
	Lat     float64
	Lng     float64
	Address string
}

// Contact identifies the person at a stop.
type Contact struct {
	Name  string
	Phone string
}

// QuoteRequest asks the carrier to price a pickup-to-dropoff run.
type QuoteRequest struct {
	Pickup  Stop
	Dropoff Stop
}

// Quotation is the carrier's priced offer. Amount is whole baht, rounded up.
type Quotation struct {
	ID            string
	Amount        int
	Currency      string
	PickupStopID  string
	DropoffStopID string
	ExpiresAt     time.Time
}

// BookRequest places an order against a previously obtained quotation.
type BookRequest struct {
	QuotationID   string
	PickupStopID  string
	DropoffStopID string
	Sender        Contact
	Recipient     Contact
	Remarks       string
	CODAmount     int
}

// Booking is the carrier's confirmation of a placed order.
type Booking struct {
	OrderRef string
	ShareURL string
	Status   string
}

// Client talks to the Lalamove v3 REST API using HMAC request signing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	apiSecret  string
	market     string
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithClock overrides the timestamp source used for request signing.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a Lalamove client from config. Missing credentials are not
// an error here; calls on an unconfigured client return ErrNotConfigured so
// the delivery service can fall back to mock quoting.
func NewClient(cfg config.LalamoveConfig, opts ...Option) *Client {
	client := &Client{
		apiKey:    strings.TrimSpace(cfg.APIKey),
		apiSecret: strings.TrimSpace(cfg.APISecret),
		market:    cfg.Market,
		baseURL:   defaultBaseURL,
		now:       time.Now,
	}
	if trimmed := strings.TrimSpace(cfg.BaseURL); trimmed != "" {
		client.baseURL = trimmed
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client.httpClient = &http.Client{Timeout: timeout}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// IsConfigured reports whether real carrier calls can be made.
func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != "" && c.apiSecret != ""
}

// Quote prices a delivery run. The returned amount is the raw carrier cost;
// buyer-facing markup is applied by the delivery service.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) (*Quotation, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if req.Pickup.Address == "" || req.Dropoff.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup and dropoff addresses are required")
	}

	payload := map[string]any{
		"data": map[string]any{
			"serviceType": defaultServiceType,
			"language":    defaultLanguage,
			"stops": []map[string]any{
				stopPayload(req.Pickup),
				stopPayload(req.Dropoff),
			},
		},
	}

	var apiResp struct {
		Data struct {
			QuotationID    string `json:"quotationId"`
			ExpiresAt      string `json:"expiresAt"`
			PriceBreakdown struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"priceBreakdown"`
			Stops []struct {
				StopID string `json:"stopId"`
			} `json:"stops"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, quotationsPath, payload, &apiResp); err != nil {
		return nil, err
	}

	amount, err := parseBahtCeil(apiResp.Data.PriceBreakdown.Total)
	if err != nil {
		return nil, fmt.Errorf("%w: total %q: %v", ErrUnavailable, apiResp.Data.PriceBreakdown.Total, err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: non-positive total %q", ErrUnavailable, apiResp.Data.PriceBreakdown.Total)
	}
	if len(apiResp.Data.Stops) < 2 {
		return nil, fmt.Errorf("%w: quotation missing stop ids", ErrUnavailable)
	}

	quotation := &Quotation{
		ID:            apiResp.Data.QuotationID,
		Amount:        amount,
		Currency:      apiResp.Data.PriceBreakdown.Currency,
		PickupStopID:  apiResp.Data.Stops[0].StopID,
		DropoffStopID: apiResp.Data.Stops[1].StopID,
	}
	if ts, err := time.Parse(time.RFC3339, apiResp.Data.ExpiresAt); err == nil {
		quotation.ExpiresAt = ts
	}
	return quotation, nil
}

// Book places an order against a quotation. A network failure here is
// ambiguous: the carrier may or may not have accepted the order, so the
// caller must not silently retry.
func (c *Client) Book(ctx context.Context, req BookRequest) (*Booking, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if req.QuotationID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}

	payload := map[string]any{
		"data": map[string]any{
			"quotationId": req.QuotationID,
			"sender": map[string]any{
				"stopId": req.PickupStopID,
				"name":   req.Sender.Name,
				"phone":  req.Sender.Phone,
			},
			"recipients": []map[string]any{
				{
					"stopId":  req.DropoffStopID,
					"name":    req.Recipient.Name,
					"phone":   req.Recipient.Phone,
					"remarks": req.Remarks,
				},
			},
		},
	}
	if req.CODAmount > 0 {
		payload["data"].(map[string]any)["paymentMethod"] = "CASH_ON_DELIVERY"
		payload["data"].(map[string]any)["codAmount"] = strconv.Itoa(req.CODAmount)
	}

	var apiResp struct {
		Data struct {
			OrderID   string `json:"orderId"`
			ShareLink string `json:"shareLink"`
			Status    string `json:"status"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, ordersPath, payload, &apiResp); err != nil {
		return nil, err
	}
	if apiResp.Data.OrderID == "" {
		return nil, fmt.Errorf("%w: booking response missing order id", ErrUnavailable)
	}

	return &Booking{
		OrderRef: apiResp.Data.OrderID,
		ShareURL: apiResp.Data.ShareLink,
		Status:   apiResp.Data.Status,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal lalamove request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.baseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build lalamove request")
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Market", c.market)
	httpReq.Header.Set("Authorization", c.authHeader(timestamp, method, path, body))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

// authHeader builds the v3 signature: HMAC-SHA256 over
// "timestamp\r\nMETHOD\r\npath\r\n\r\nbody", keyed by the API secret.
func (c *Client) authHeader(timestamp, method, path string, body []byte) string {
	raw := fmt.Sprintf("%s\r\n%s\r\n%s\r\n\r\n%s", timestamp, method, path, body)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(raw))
	signature := hex.EncodeToString(mac.Sum(nil))
	return fmt.Sprintf("hmac %s:%s:%s", c.apiKey, timestamp, signature)
}

func stopPayload(s Stop) map[string]any {
	return map[string]any{
		"coordinates": map[string]string{
			"lat": formatCoord(s.Lat),
			"lng": formatCoord(s.Lng),
		},
		"address": s.Address,
	}
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseBahtCeil converts the carrier's decimal price string to whole baht,
// rounding any satang up so the cost is never understated.
func parseBahtCeil(total string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(total))
	if err != nil {
		return 0, err
	}
	return int(d.Ceil().IntPart()), nil
}
