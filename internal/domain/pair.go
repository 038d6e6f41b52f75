package domain

import "strings"

// Pair is an ordered base/quote asset combination, e.g. DOGE/USDT.
// Immutable once constructed; identity is the concatenated exchange symbol.
type Pair struct {
	Base  string `json:"base"`
	Quote string `json:"quote"`
}

// NewPair normalizes asset codes to upper case.
func NewPair(base, quote string) Pair {
	return Pair{
		Base:  strings.ToUpper(strings.TrimSpace(base)),
		Quote: strings.ToUpper(strings.TrimSpace(quote)),
	}
}

// Symbol returns the exchange symbol, e.g. "DOGEUSDT".
func (p Pair) Symbol() string {
	return p.Base + p.Quote
}

// StreamName returns the combined-stream subscription name, e.g. "dogeusdt@ticker".
func (p Pair) StreamName() string {
	return strings.ToLower(p.Symbol()) + "@ticker"
}

// Inverse returns the reversed pair (quote/base).
func (p Pair) Inverse() Pair {
	return Pair{Base: p.Quote, Quote: p.Base}
}

func (p Pair) String() string {
	return p.Base + "/" + p.Quote
}

// IsZero reports whether the pair is empty.
func (p Pair) IsZero() bool {
	return p.Base == "" && p.Quote == ""
}
