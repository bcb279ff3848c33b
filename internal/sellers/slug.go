package sellers

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	slugMaxLength    = 40
	slugSuffixLength = 4
	slugAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9]+`)
	slugCollapseRe = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe storefront slug from a shop name. Names that
// carry no ASCII letters or digits (Thai-only shop names) fall back to a
// random slug.
func Slugify(shopName string) string {
	slug := strings.ToLower(strings.TrimSpace(shopName))
	slug = slugInvalidRe.ReplaceAllString(slug, "-")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > slugMaxLength {
		slug = strings.Trim(slug[:slugMaxLength], "-")
	}
	if slug == "" {
		return "shop-" + randomSlugSuffix()
	}
	return slug
}

// WithSuffix appends a random suffix so a colliding slug can be retried.
func WithSuffix(slug string) string {
	return fmt.Sprintf("%s-%s", slug, randomSlugSuffix())
}

func randomSlugSuffix() string {
	b := make([]byte, slugSuffixLength)
	max := big.NewInt(int64(len(slugAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			b[i] = slugAlphabet[0]
			continue
		}
		b[i] = slugAlphabet[n.Int64()]
	}
	return string(b)
}
