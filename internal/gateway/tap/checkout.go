package tap

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SaudiCountryCode is the phone country code sent with every charge.
	SaudiCountryCode = "966"
	// FallbackPhoneNumber is a compatibility shim for the gateway's phone
	// validation, used when the customer phone is absent or malformed. It
	// is not a real contact and callers must never treat it as one.
	FallbackPhoneNumber = "500000001"
)

// NormalizePhone reduces the input to a 9-digit Saudi local number. Strips
// non-digits, drops a leading country code or national zero, and falls back
// to FallbackPhoneNumber when the result is not a valid local mobile number.
func NormalizePhone(input string) string {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	num := digits.String()

	if strings.HasPrefix(num, SaudiCountryCode) {
		num = num[len(SaudiCountryCode):]
	}
	num = strings.TrimPrefix(num, "0")

	if len(num) != 9 || !strings.HasPrefix(num, "5") {
		return FallbackPhoneNumber
	}
	return num
}

// SplitCustomerName tokenizes a free-text name into first, middle and last
// name fields. Tokens beyond the third are folded into the last name.
func SplitCustomerName(fullName string) (first, middle, last string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", "", ""
	case 1:
		return parts[0], "", ""
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], parts[1], strings.Join(parts[2:], " ")
	}
}

// NewTransactionReference generates a unique reference from a millisecond
// timestamp and a random suffix to avoid collisions.
func NewTransactionReference(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// AmountToGateway converts minor units to the decimal amount the gateway
// expects on the wire.
func AmountToGateway(cents int64) float64 {
	return float64(cents) / 100
}

// AmountFromGateway converts a decimal gateway amount back to minor units.
func AmountFromGateway(amount float64) int64 {
	if amount >= 0 {
		return int64(amount*100 + 0.5)
	}
	return int64(amount*100 - 0.5)
}
