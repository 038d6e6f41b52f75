package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"crypto_converter/internal/domain"
	"crypto_converter/internal/infra"
)

// Client is the Binance spot REST client (boundary layer). It is used once
// at startup to discover the tradable pair universe.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Binance REST client.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.Binance.RestURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		logger: slog.Default().With("module", "binance_client"),
	}
}

// FetchSpotPairs returns every spot pair that is currently TRADING, in the
// order the exchange lists them. When quoteFilter is non-empty only pairs
// quoted in one of those assets are kept; empty means all spot pairs.
func (c *Client) FetchSpotPairs(ctx context.Context, quoteFilter []string) ([]domain.Pair, error) {
	filter := make(map[string]bool, len(quoteFilter))
	for _, q := range quoteFilter {
		if q = strings.ToUpper(strings.TrimSpace(q)); q != "" {
			filter[q] = true
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v3/exchangeInfo", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("exchange info", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError("read exchange info", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("binance api error: status=%d body=%s", resp.StatusCode, truncate(body, 256))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, domain.NewNetworkError("exchange info", err)
		}
		return nil, domain.NewFatalNetworkError("exchange info", err)
	}

	var info exchangeInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse exchange info: %w", err)
	}

	pairs := make([]domain.Pair, 0, len(info.Symbols))
	for _, sym := range info.Symbols {
		if sym.Status != "TRADING" || !sym.spotAllowed() {
			continue
		}
		quote := strings.ToUpper(sym.QuoteAsset)
		if len(filter) > 0 && !filter[quote] {
			continue
		}
		pairs = append(pairs, domain.NewPair(sym.BaseAsset, quote))
	}

	c.logger.Info("Discovered spot pairs", slog.Int("count", len(pairs)))
	return pairs, nil
}

// spotAllowed mirrors the exchange's two ways of flagging spot markets.
func (s symbolInfo) spotAllowed() bool {
	if s.IsSpotTradingAllowed {
		return true
	}
	for _, p := range s.Permissions {
		if p == "SPOT" {
			return true
		}
	}
	return false
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
