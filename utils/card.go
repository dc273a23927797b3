package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// GenerateCardNumber generates a Luhn-valid card number with the given
// BIN prefix and total length.
func GenerateCardNumber(prefix string, length int) (string, error) {
	if length <= len(prefix) || length > 19 {
		return "", fmt.Errorf("invalid card number length: %d", length)
	}
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return "", fmt.Errorf("prefix must be numeric, got %q", prefix)
		}
	}

	// Random body, last position reserved for the check digit.
	body := make([]byte, length-len(prefix)-1)
	if _, err := rand.Read(body); err != nil {
		return "", fmt.Errorf("failed to generate random digits: %w", err)
	}

	var builder strings.Builder
	builder.WriteString(prefix)
	for _, b := range body {
		builder.WriteByte(b%10 + '0')
	}

	partial := builder.String()
	builder.WriteByte(luhnCheckDigit(partial) + '0')

	return builder.String(), nil
}

// luhnCheckDigit computes the digit that makes partial+digit pass the
// Luhn checksum.
func luhnCheckDigit(partial string) byte {
	sum := 0
	// The appended check digit occupies the rightmost position, so the
	// digit just before it gets doubled.
	double := true
	for i := len(partial) - 1; i >= 0; i-- {
		d := int(partial[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte((10 - sum%10) % 10)
}

// ValidLuhn reports whether number passes the Luhn checksum.
func ValidLuhn(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// GenerateExpiryDate returns a card expiry date three years out (MM/YY).
func GenerateExpiryDate() string {
	now := time.Now()
	return fmt.Sprintf("%02d/%02d", now.Month(), (now.Year()+3)%100)
}

// GenerateCVV generates a 3-digit CVV code.
func GenerateCVV() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate CVV: %w", err)
	}
	return fmt.Sprintf("%d%d%d", b[0]%10, b[1]%10, b[2]%10), nil
}

// MaskCardNumber hides all but the last four digits.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}
