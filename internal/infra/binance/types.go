package binance

// exchangeInfoResponse is the subset of GET /api/v3/exchangeInfo we consume.
type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol               string   `json:"symbol"`
	Status               string   `json:"status"`
	BaseAsset            string   `json:"baseAsset"`
	QuoteAsset           string   `json:"quoteAsset"`
	IsSpotTradingAllowed bool     `json:"isSpotTradingAllowed"`
	Permissions          []string `json:"permissions"`
}

// combinedStreamMessage wraps every payload on a combined stream endpoint
// under "stream"/"data".
type combinedStreamMessage struct {
	Stream string       `json:"stream"`
	Data   tickerUpdate `json:"data"`
}

// tickerUpdate is the subset of the 24hr ticker stream payload we consume.
// Reference: <symbol>@ticker, where "s" is the symbol, "c" the last price,
// and "E" the event time in milliseconds.
type tickerUpdate struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
}
