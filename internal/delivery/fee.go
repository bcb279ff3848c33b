package delivery

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	mockQuotePrefix = "mock_"
	mockFeeMin      = 50
	mockFeeMax      = 150
	feeStep         = 5
)

var markup = decimal.NewFromFloat(1.15)

// BuyerFee converts a raw carrier cost into the fee charged to the buyer:
// 15% markup, then rounded up to the next 5-baht step. The platform's
// margin lives in this spread.
func BuyerFee(carrierCost int) int {
	if carrierCost <= 0 {
		return 0
	}
	marked := decimal.NewFromInt(int64(carrierCost)).Mul(markup)
	steps := marked.Div(decimal.NewFromInt(feeStep)).Ceil()
	return int(steps.IntPart()) * feeStep
}

// MockFee returns a plausible delivery fee when the carrier cannot be asked:
// 50-150 baht in 5-baht steps.
func MockFee() int {
	steps := (mockFeeMax - mockFeeMin) / feeStep
	return mockFeeMin + feeStep*rand.Intn(steps+1)
}

// MockQuotationID returns a quotation id recognizable as not coming from the
// carrier.
func MockQuotationID() string {
	return fmt.Sprintf("%s%s", mockQuotePrefix, uuid.NewString())
}

// IsMockRef reports whether a booking or quotation reference is a mock.
func IsMockRef(ref string) bool {
	return len(ref) >= len(mockQuotePrefix) && ref[:len(mockQuotePrefix)] == mockQuotePrefix
}
