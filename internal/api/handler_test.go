package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto_converter/internal/domain"

	"github.com/shopspring/decimal"
)

// fakeConverter returns a canned result or error.
type fakeConverter struct {
	result  domain.Conversion
	err     error
	lastReq domain.ConversionRequest
}

func (f *fakeConverter) Convert(_ context.Context, req domain.ConversionRequest) (domain.Conversion, error) {
	f.lastReq = req
	if f.err != nil {
		return domain.Conversion{}, f.err
	}
	return f.result, nil
}

func doRequest(t *testing.T, conv ConversionService, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(&Server{converter: conv})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &fakeConverter{}, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestConvertSuccess(t *testing.T) {
	now := time.Now().UTC()
	conv := &fakeConverter{result: domain.Conversion{
		From:      "DOGE",
		To:        "USDT",
		AmountIn:  decimal.NewFromInt(10),
		Rate:      decimal.RequireFromString("0.0735"),
		AmountOut: decimal.RequireFromString("0.735"),
		Timestamp: now,
	}}

	rec := doRequest(t, conv, "/convert?amount=10&from=DOGE&to=USDT")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var got domain.Conversion
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.From != "DOGE" || !got.Rate.Equal(decimal.RequireFromString("0.0735")) {
		t.Errorf("unexpected body: %s", rec.Body)
	}

	if conv.lastReq.At != nil {
		t.Error("latest-mode request should carry no timestamp")
	}
}

func TestConvertHistoricalTimestampParsed(t *testing.T) {
	conv := &fakeConverter{result: domain.Conversion{}}
	ts := "2026-08-20T12:00:00Z"

	rec := doRequest(t, conv, "/convert?amount=1&from=DOGE&to=USDT&timestamp="+ts)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if conv.lastReq.At == nil {
		t.Fatal("timestamp should be forwarded to the converter")
	}
	want, _ := time.Parse(time.RFC3339, ts)
	if !conv.lastReq.At.Equal(want) {
		t.Errorf("expected %s, got %s", want, conv.lastReq.At)
	}
}

func TestConvertParamValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing amount", "/convert?from=DOGE&to=USDT"},
		{"bad amount", "/convert?amount=abc&from=DOGE&to=USDT"},
		{"zero amount", "/convert?amount=0&from=DOGE&to=USDT"},
		{"negative amount", "/convert?amount=-5&from=DOGE&to=USDT"},
		{"short from", "/convert?amount=1&from=D&to=USDT"},
		{"long to", "/convert?amount=1&from=DOGE&to=VERYLONGASSET"},
		{"bad timestamp", "/convert?amount=1&from=DOGE&to=USDT&timestamp=yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &fakeConverter{}, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestConvertErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrPairUnsupported, http.StatusNotFound},
		{domain.ErrNoHistoricalData, http.StatusNotFound},
		{domain.ErrQuotesOutdated, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := doRequest(t, &fakeConverter{err: tt.err}, "/convert?amount=1&from=DOGE&to=USDT")
		if rec.Code != tt.status {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.status, rec.Code)
		}
		var body errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%v: invalid error JSON: %v", tt.err, err)
		}
	}
}
