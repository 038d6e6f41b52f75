package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPairNormalization(t *testing.T) {
	p := NewPair(" doge ", "usdt")
	if p.Base != "DOGE" || p.Quote != "USDT" {
		t.Errorf("expected DOGE/USDT, got %s", p)
	}
	if p.Symbol() != "DOGEUSDT" {
		t.Errorf("expected symbol DOGEUSDT, got %s", p.Symbol())
	}
	if p.StreamName() != "dogeusdt@ticker" {
		t.Errorf("expected stream dogeusdt@ticker, got %s", p.StreamName())
	}
}

func TestPairInverse(t *testing.T) {
	p := NewPair("DOGE", "USDT")
	inv := p.Inverse()
	if inv.Base != "USDT" || inv.Quote != "DOGE" {
		t.Errorf("expected USDT/DOGE, got %s", inv)
	}
	if inv.Inverse() != p {
		t.Error("double inversion should round-trip")
	}
}

func TestQuoteValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		quote Quote
		want  bool
	}{
		{"ok", Quote{Pair: NewPair("DOGE", "USDT"), Price: decimal.NewFromFloat(0.0735), ObservedAt: now}, true},
		{"zero price", Quote{Pair: NewPair("DOGE", "USDT"), Price: decimal.Zero, ObservedAt: now}, false},
		{"negative price", Quote{Pair: NewPair("DOGE", "USDT"), Price: decimal.NewFromInt(-1), ObservedAt: now}, false},
		{"no timestamp", Quote{Pair: NewPair("DOGE", "USDT"), Price: decimal.NewFromInt(1)}, false},
		{"no pair", Quote{Price: decimal.NewFromInt(1), ObservedAt: now}, false},
	}
	for _, tt := range tests {
		if got := tt.quote.Valid(); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestQuoteRowRoundTrip(t *testing.T) {
	q := Quote{
		Pair:       NewPair("BTC", "USDT"),
		Price:      decimal.RequireFromString("65000.12345678"),
		ObservedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	back, err := NewQuoteRow(q).ToQuote()
	if err != nil {
		t.Fatalf("ToQuote failed: %v", err)
	}
	if back.Pair != q.Pair || !back.Price.Equal(q.Price) || !back.ObservedAt.Equal(q.ObservedAt) {
		t.Errorf("round trip mismatch: %+v vs %+v", back, q)
	}
}

func TestQuoteRowCorruptPrice(t *testing.T) {
	row := QuoteRow{Base: "BTC", Quote: "USDT", Price: "not-a-number"}
	if _, err := row.ToQuote(); err == nil {
		t.Fatal("corrupt price should fail to convert")
	}
}
