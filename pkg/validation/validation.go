package validation

import (
	"regexp"
	"strings"
	"unicode"

	pkgerrors "github.com/tapshop/tapshop-backend/pkg/errors"
)

const minAddressLength = 20

var (
	localMobilePattern = regexp.MustCompile(`^0[689]\d{8}$`)
	intlMobilePattern  = regexp.MustCompile(`^\+66[689]\d{8}$`)
	promptPayPhone     = regexp.MustCompile(`^0\d{9}$`)
	promptPayCitizen   = regexp.MustCompile(`^\d{13}$`)
)

// NormalizePhone strips separators and rewrites the +66 international prefix
// to the local leading zero. The result may still be invalid; callers should
// validate it afterwards.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r == '-' || r == ' ' || r == '(' || r == ')' {
			continue
		}
		b.WriteRune(r)
	}
	normalized := b.String()
	if strings.HasPrefix(normalized, "+66") {
		normalized = "0" + normalized[3:]
	}
	return normalized
}

// IsThaiMobile reports whether the value is a Thai mobile number in local or
// international form.
func IsThaiMobile(phone string) bool {
	return localMobilePattern.MatchString(phone) || intlMobilePattern.MatchString(phone)
}

// ValidatePhone normalizes and checks a Thai mobile number, returning the
// normalized value on success.
func ValidatePhone(raw string) (string, error) {
	normalized := NormalizePhone(raw)
	if !IsThaiMobile(normalized) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid Thai mobile number").WithDetails(map[string]any{"phone": raw})
	}
	return normalized, nil
}

// IsPromptPayID reports whether the value is a valid PromptPay identifier:
// a 10-digit phone number or a 13-digit citizen ID.
func IsPromptPayID(id string) bool {
	return promptPayPhone.MatchString(id) || promptPayCitizen.MatchString(id)
}

// ValidatePromptPayID checks a PromptPay identifier after stripping separators.
func ValidatePromptPayID(raw string) (string, error) {
	normalized := NormalizePhone(raw)
	if !IsPromptPayID(normalized) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid PromptPay ID")
	}
	return normalized, nil
}

// ValidateAddress rejects addresses too short or vague to be deliverable.
// A usable street address carries at least one digit (house or lot number).
func ValidateAddress(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if len([]rune(trimmed)) < minAddressLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "address is too short to deliver to").WithDetails(map[string]any{"min_length": minAddressLength})
	}
	if !containsDigit(trimmed) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "address must include a house or building number")
	}
	return trimmed, nil
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
