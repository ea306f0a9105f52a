package cart

// parse.go — centralized parsing of user-entered quantity/price text.
// Every mutation entry point (add, update quantity, update price) goes
// through these two functions so the fallback policy cannot drift between
// code paths.

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FallbackReason says why a parsed input was rejected and a fallback applies.
type FallbackReason string

const (
	FallbackNone        FallbackReason = ""
	FallbackEmpty       FallbackReason = "empty"
	FallbackUnparseable FallbackReason = "unparseable"
	FallbackNonPositive FallbackReason = "non_positive"
)

// Valid reports whether the input parsed to a usable positive number.
func (r FallbackReason) Valid() bool { return r == FallbackNone }

// ParseQuantity parses a user-entered quantity. On failure the returned
// reason tells the caller which fallback to apply (for quantities the policy
// is: treat as "remove the line").
func ParseQuantity(raw string) (decimal.Decimal, FallbackReason) {
	return parsePositive(raw)
}

// ParsePrice parses a user-entered unit price. On failure the caller must
// revert to the line's original product price — never to zero or a negative.
func ParsePrice(raw string) (decimal.Decimal, FallbackReason) {
	return parsePositive(raw)
}

func parsePositive(raw string) (decimal.Decimal, FallbackReason) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, FallbackEmpty
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, FallbackUnparseable
	}
	if !d.IsPositive() {
		return decimal.Zero, FallbackNonPositive
	}
	return d, FallbackNone
}
