package service

import (
	"context"
	"fmt"
	"time"

	"crypto_converter/internal/domain"

	"github.com/shopspring/decimal"
)

// QuoteStore is the durable-store view the converter needs.
type QuoteStore interface {
	Latest(ctx context.Context, pair domain.Pair) (domain.Quote, bool, error)
	LatestAt(ctx context.Context, pair domain.Pair, ts time.Time) (domain.Quote, bool, error)
	HasPair(ctx context.Context, pair domain.Pair) (bool, error)
}

// Converter resolves conversion requests against the quote cache (latest
// mode) and the durable store (historical mode). When no cache is attached,
// latest mode falls back to the store's most recent rows; the API process
// runs in that configuration since the cache lives in the consumer process.
type Converter struct {
	cache        *QuoteCache // may be nil
	store        QuoteStore
	maxStaleness time.Duration

	now func() time.Time // injectable clock
}

// NewConverter creates a converter with the given freshness window.
func NewConverter(cache *QuoteCache, store QuoteStore, maxStaleness time.Duration) *Converter {
	return &Converter{
		cache:        cache,
		store:        store,
		maxStaleness: maxStaleness,
		now:          time.Now,
	}
}

// Convert resolves a rate for the request and applies it. The returned Rate
// is always the effective multiplier for AmountIn -> AmountOut; when only
// the reverse pair has a quote, the rate is already inverted. Identical
// inputs against an unchanged store yield identical output.
func (c *Converter) Convert(ctx context.Context, req domain.ConversionRequest) (domain.Conversion, error) {
	req.Normalize()
	if !req.Amount.IsPositive() {
		return domain.Conversion{}, fmt.Errorf("amount must be positive, got %s", req.Amount)
	}

	pair := domain.NewPair(req.From, req.To)

	var (
		q        domain.Quote
		inverted bool
		err      error
	)
	if req.At != nil {
		q, inverted, err = c.resolveHistorical(ctx, pair, *req.At)
	} else {
		q, inverted, err = c.resolveLatest(ctx, pair)
	}
	if err != nil {
		return domain.Conversion{}, err
	}

	// Staleness applies only to latest mode; a historical caller asked for
	// a point in the past explicitly.
	if req.At == nil && c.now().Sub(q.ObservedAt) > c.maxStaleness {
		return domain.Conversion{}, domain.ErrQuotesOutdated
	}

	rate := q.Price
	if inverted {
		if q.Price.IsZero() {
			return domain.Conversion{}, domain.ErrPairUnsupported
		}
		rate = decimal.NewFromInt(1).Div(q.Price)
	}

	return domain.Conversion{
		From:      req.From,
		To:        req.To,
		AmountIn:  req.Amount,
		Rate:      rate,
		AmountOut: req.Amount.Mul(rate),
		Timestamp: q.ObservedAt,
		Inverted:  inverted,
	}, nil
}

// resolveLatest finds the freshest quote for the pair, direct first, then
// inverse. Cache when attached, store otherwise.
func (c *Converter) resolveLatest(ctx context.Context, pair domain.Pair) (domain.Quote, bool, error) {
	if c.cache != nil {
		if q, ok := c.cache.Latest(pair); ok {
			return q, false, nil
		}
		if q, ok := c.cache.Latest(pair.Inverse()); ok {
			return q, true, nil
		}
		return domain.Quote{}, false, domain.ErrPairUnsupported
	}

	q, found, err := c.store.Latest(ctx, pair)
	if err != nil {
		return domain.Quote{}, false, err
	}
	if found {
		return q, false, nil
	}

	q, found, err = c.store.Latest(ctx, pair.Inverse())
	if err != nil {
		return domain.Quote{}, false, err
	}
	if found {
		return q, true, nil
	}
	return domain.Quote{}, false, domain.ErrPairUnsupported
}

// resolveHistorical finds the most recent persisted quote at or before ts,
// direct first, then inverse. A pair with rows only after ts fails with
// ErrNoHistoricalData; a pair with no rows at all is unsupported.
func (c *Converter) resolveHistorical(ctx context.Context, pair domain.Pair, ts time.Time) (domain.Quote, bool, error) {
	q, found, err := c.store.LatestAt(ctx, pair, ts)
	if err != nil {
		return domain.Quote{}, false, err
	}
	if found {
		return q, false, nil
	}

	q, found, err = c.store.LatestAt(ctx, pair.Inverse(), ts)
	if err != nil {
		return domain.Quote{}, false, err
	}
	if found {
		return q, true, nil
	}

	for _, p := range []domain.Pair{pair, pair.Inverse()} {
		known, err := c.store.HasPair(ctx, p)
		if err != nil {
			return domain.Quote{}, false, err
		}
		if known {
			return domain.Quote{}, false, domain.ErrNoHistoricalData
		}
	}
	return domain.Quote{}, false, domain.ErrPairUnsupported
}
