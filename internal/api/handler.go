package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"crypto_converter/internal/domain"

	"github.com/shopspring/decimal"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConvert serves GET /convert?amount=&from=&to=&timestamp=.
// timestamp is optional RFC 3339; when present the conversion is historical.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := parseConvertRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	result, err := s.converter.Convert(r.Context(), req)
	if err != nil {
		status, msg := mapConvertError(err)
		if status == http.StatusInternalServerError {
			slog.Error("Conversion failed", slog.Any("error", err))
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func parseConvertRequest(r *http.Request) (domain.ConversionRequest, error) {
	q := r.URL.Query()

	amountStr := q.Get("amount")
	if amountStr == "" {
		return domain.ConversionRequest{}, fmt.Errorf("amount is required")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return domain.ConversionRequest{}, fmt.Errorf("invalid amount: %s", amountStr)
	}
	if !amount.IsPositive() {
		return domain.ConversionRequest{}, fmt.Errorf("amount must be positive")
	}

	from := q.Get("from")
	to := q.Get("to")
	if len(from) < 2 || len(from) > 10 || len(to) < 2 || len(to) > 10 {
		return domain.ConversionRequest{}, fmt.Errorf("from and to must be 2-10 character asset codes")
	}

	req := domain.ConversionRequest{Amount: amount, From: from, To: to}

	if tsStr := q.Get("timestamp"); tsStr != "" {
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			return domain.ConversionRequest{}, fmt.Errorf("invalid timestamp, want RFC3339: %s", tsStr)
		}
		utc := ts.UTC()
		req.At = &utc
	}

	return req, nil
}

func mapConvertError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrPairUnsupported):
		return http.StatusNotFound, "conversion not available for this pair"
	case errors.Is(err, domain.ErrNoHistoricalData):
		return http.StatusNotFound, "no historical data for requested time"
	case errors.Is(err, domain.ErrQuotesOutdated):
		return http.StatusBadRequest, "quotes outdated"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}
