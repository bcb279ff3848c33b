package orders

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewNumberFormat(t *testing.T) {
	at := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)
	re := regexp.MustCompile(`^TS-20260115-[0-9A-Z]{4}$`)

	for i := 0; i < 50; i++ {
		number := NewNumber("TS", at)
		require.Regexp(t, re, number)
	}
}

func TestNewNumberSuffixVaries(t *testing.T) {
	at := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		seen[NewNumber("TS", at)] = struct{}{}
	}
	// 50 draws from a 36^4 space colliding down to one value would mean the
	// generator is broken, not unlucky.
	require.Greater(t, len(seen), 1)
}
