package payments

import "math"

// Monetary amounts cross the gateway boundary as integer cents while the rest
// of the system works in USD major units with two-decimal prices. These two
// helpers are the only place the conversion happens, in either direction.

// ToMinorUnits converts a major-unit amount (e.g. 19.99) to cents (1999).
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits converts cents (1999) to a major-unit amount (19.99).
func FromMinorUnits(cents int64) float64 {
	return float64(cents) / 100
}

// RoundToCents normalizes a computed amount to two decimals.
func RoundToCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
