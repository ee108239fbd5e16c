package quote

import (
	"context"
	"strings"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

// StaticProvider serves a fixed quote table. Used for development and tests
// where hitting a real market-data endpoint is unwanted.
type StaticProvider struct {
	quotes map[string]types.Quote
}

func NewStaticProvider(quotes map[string]types.Quote) *StaticProvider {
	return &StaticProvider{quotes: quotes}
}

func (p *StaticProvider) Lookup(_ context.Context, symbol string) (*types.Quote, error) {
	quote, ok := p.quotes[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return nil, nil
	}
	return &quote, nil
}

// DevQuotes is a small deterministic table for local development.
func DevQuotes() map[string]types.Quote {
	quotes := make(map[string]types.Quote)
	for symbol, price := range map[string]string{
		"AAPL": "187.32",
		"MSFT": "402.18",
		"GOOG": "141.55",
		"AMZN": "171.90",
		"NFLX": "612.04",
	} {
		quotes[symbol] = types.Quote{Symbol: symbol, Name: symbol + " (dev)", Price: decimal.RequireFromString(price)}
	}
	return quotes
}
