// Package domain defines core data structures shared by the signal computer,
// the host registry and the tooling around them.
package domain

import (
	"fmt"
	"strings"
)

// Pair trading pair the candle series belongs to.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}

// IsZero reports whether the pair is unset.
func (p Pair) IsZero() bool {
	return p.From == "" && p.To == ""
}

// ParsePair parses "BTC_USDT" (or "BTC/USDT") into a Pair.
func ParsePair(s string) (Pair, error) {
	elements := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '/' })
	if len(elements) != 2 {
		return Pair{}, fmt.Errorf("invalid pair %q, expected BASE_QUOTE", s)
	}
	return Pair{From: strings.ToUpper(elements[0]), To: strings.ToUpper(elements[1])}, nil
}
