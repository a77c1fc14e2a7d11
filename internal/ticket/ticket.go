// Package ticket generates and checks participant ticket codes and converts
// them to and from QR images. A QR payload is exactly the ticket code.
package ticket

import (
	"fmt"
	"regexp"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	Alphabet      = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	DefaultLength = 5
	PrefixLength  = 3
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3}-[A-Z0-9]{5}$`)

// Generate returns prefix + "-" + length characters drawn uniformly from
// Alphabet. Uniqueness is the caller's business.
func Generate(prefix string, length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}
	suffix, err := gonanoid.Generate(Alphabet, length)
	if err != nil {
		return "", fmt.Errorf("generate ticket suffix: %w", err)
	}
	return prefix + "-" + suffix, nil
}

// PrefixFromSlug takes the first three alphanumerics of an event slug,
// upper-cased and padded with X.
func PrefixFromSlug(slug string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(slug) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == PrefixLength {
				break
			}
		}
	}
	for b.Len() < PrefixLength {
		b.WriteByte('X')
	}
	return b.String()
}

func Valid(code string) bool {
	return codeRegex.MatchString(code)
}

// Normalize cleans typed or scanned input before lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
