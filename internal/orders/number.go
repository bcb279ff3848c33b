package orders

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	numberSuffixLength = 4
	numberAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NewNumber builds a buyer-facing order number, e.g. TS-20260115-A1B2. The
// random suffix is short on purpose; uniqueness is enforced by the database
// and colliding inserts are retried with a fresh number.
func NewNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), randomNumberSuffix())
}

func randomNumberSuffix() string {
	b := make([]byte, numberSuffixLength)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			b[i] = numberAlphabet[0]
			continue
		}
		b[i] = numberAlphabet[n.Int64()]
	}
	return string(b)
}
