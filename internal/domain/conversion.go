package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ConversionRequest asks for amount of From expressed in To.
// At is nil for latest-mode requests.
type ConversionRequest struct {
	Amount decimal.Decimal
	From   string
	To     string
	At     *time.Time
}

// Normalize upper-cases the asset codes in place.
func (r *ConversionRequest) Normalize() {
	r.From = strings.ToUpper(strings.TrimSpace(r.From))
	r.To = strings.ToUpper(strings.TrimSpace(r.To))
}

// Conversion is the result of a resolved conversion.
// Rate is always the effective multiplier for AmountIn -> AmountOut,
// already inverted when the reverse pair's quote was used.
type Conversion struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	AmountIn  decimal.Decimal `json:"amount_in"`
	Rate      decimal.Decimal `json:"rate"`
	AmountOut decimal.Decimal `json:"amount_out"`
	Timestamp time.Time       `json:"timestamp"`
	Inverted  bool            `json:"inverted"`
}
