package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

// Yahoo Finance v8 chart provider (cached)

type YahooProvider struct {
	cli     *http.Client
	baseURL string
	ttl     time.Duration
	mu      sync.RWMutex
	cache   map[string]cachedQuote
}

func NewYahooProvider() *YahooProvider {
	return &YahooProvider{
		cli:     &http.Client{Timeout: 8 * time.Second},
		baseURL: "https://query2.finance.yahoo.com",
		ttl:     60 * time.Second,
		cache:   make(map[string]cachedQuote),
	}
}

func (p *YahooProvider) Lookup(ctx context.Context, symbol string) (*types.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}

	// Cache
	p.mu.RLock()
	if c, ok := p.cache[symbol]; ok && time.Since(c.fetched) < p.ttl {
		p.mu.RUnlock()
		quote := c.quote
		return &quote, nil
	}
	p.mu.RUnlock()

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d", p.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "papertrader/1.0")

	resp, err := p.cli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Yahoo answers 404 for symbols it does not know.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo http %d", resp.StatusCode)
	}

	var raw struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					ShortName          string  `json:"shortName"`
					LongName           string  `json:"longName"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
				} `json:"meta"`
				Timestamp  []int64 `json:"timestamp"`
				Indicators struct {
					Quote []struct {
						Close []float64 `json:"close"`
					} `json:"quote"`
				} `json:"indicators"`
			} `json:"result"`
			Error any `json:"error"`
		} `json:"chart"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if len(raw.Chart.Result) == 0 {
		return nil, nil
	}

	r := raw.Chart.Result[0]
	price := r.Meta.RegularMarketPrice

	// Fallback: last non-zero close if meta missing
	if price <= 0 && len(r.Timestamp) > 0 && len(r.Indicators.Quote) > 0 && len(r.Indicators.Quote[0].Close) == len(r.Timestamp) {
		for i := len(r.Timestamp) - 1; i >= 0; i-- {
			if c := r.Indicators.Quote[0].Close[i]; c > 0 {
				price = c
				break
			}
		}
	}
	if price <= 0 {
		return nil, nil
	}

	name := r.Meta.ShortName
	if name == "" {
		name = r.Meta.LongName
	}
	if name == "" {
		name = symbol
	}

	quote := types.Quote{
		Symbol: symbol,
		Name:   name,
		Price:  decimal.NewFromFloat(price),
	}

	p.mu.Lock()
	p.cache[symbol] = cachedQuote{quote: quote, fetched: time.Now()}
	p.mu.Unlock()

	return &quote, nil
}
