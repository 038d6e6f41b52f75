package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single observed price for a pair.
// Price is always positive; ObservedAt is UTC.
type Quote struct {
	Pair       Pair            `json:"pair"`
	Price      decimal.Decimal `json:"price"`
	ObservedAt time.Time       `json:"observed_at"`
}

// Valid reports whether the quote can enter the cache.
func (q Quote) Valid() bool {
	return !q.Pair.IsZero() && q.Price.IsPositive() && !q.ObservedAt.IsZero()
}

// QuoteRow is the persisted form of a Quote. Append-only; rows are removed
// only by the retention sweeper. Price is stored as a decimal string so the
// round trip loses no precision.
type QuoteRow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Base       string    `gorm:"index:idx_pair_observed,priority:1" json:"base"`
	Quote      string    `gorm:"index:idx_pair_observed,priority:2" json:"quote"`
	Price      string    `json:"price"`
	ObservedAt time.Time `gorm:"index:idx_pair_observed,priority:3;index" json:"observed_at"`
}

// TableName keeps the table name the API and consumer share.
func (QuoteRow) TableName() string { return "quotes" }

// NewQuoteRow converts an in-memory quote to its persisted form.
func NewQuoteRow(q Quote) QuoteRow {
	return QuoteRow{
		Base:       q.Pair.Base,
		Quote:      q.Pair.Quote,
		Price:      q.Price.String(),
		ObservedAt: q.ObservedAt.UTC(),
	}
}

// ToQuote converts a persisted row back to a Quote.
func (r QuoteRow) ToQuote() (Quote, error) {
	price, err := decimal.NewFromString(r.Price)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Pair:       Pair{Base: r.Base, Quote: r.Quote},
		Price:      price,
		ObservedAt: r.ObservedAt.UTC(),
	}, nil
}
