package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

// Alpha Vantage GLOBAL_QUOTE provider (simple, cached)

var (
	ErrAPIKeyMissing  = errors.New("ALPHAVANTAGE_API_KEY not set")
	ErrAPIRateLimited = errors.New("alpha vantage rate limit or information note")
)

type AlphaVantageProvider struct {
	apiKey  string
	cli     *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

func NewAlphaVantageProviderFromEnv() (*AlphaVantageProvider, error) {
	key := strings.TrimSpace(os.Getenv("ALPHAVANTAGE_API_KEY"))
	if key == "" {
		return nil, ErrAPIKeyMissing
	}
	return &AlphaVantageProvider{
		apiKey:  key,
		cli:     &http.Client{Timeout: 8 * time.Second},
		baseURL: "https://www.alphavantage.co",
		ttl:     60 * time.Second,
		cache:   make(map[string]cachedQuote),
	}, nil
}

func (p *AlphaVantageProvider) Lookup(ctx context.Context, symbol string) (*types.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, nil
	}

	// cache hit?
	p.mu.RLock()
	if c, ok := p.cache[symbol]; ok && time.Since(c.fetched) < p.ttl {
		p.mu.RUnlock()
		quote := c.quote
		return &quote, nil
	}
	p.mu.RUnlock()

	url := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s", p.baseURL, symbol, p.apiKey)
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

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage http %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	if _, ok := raw["Note"]; ok {
		return nil, ErrAPIRateLimited
	}
	if _, ok := raw["Information"]; ok {
		return nil, ErrAPIRateLimited
	}
	gq, ok := raw["Global Quote"].(map[string]any)
	if !ok || len(gq) == 0 {
		return nil, nil
	}

	priceStr, _ := gq["05. price"].(string)
	price, err := decimal.NewFromString(priceStr)
	if err != nil || !price.IsPositive() {
		return nil, nil
	}

	// GLOBAL_QUOTE carries no company name.
	quote := types.Quote{Symbol: symbol, Name: symbol, Price: price}

	p.mu.Lock()
	p.cache[symbol] = cachedQuote{quote: quote, fetched: time.Now()}
	p.mu.Unlock()

	return &quote, nil
}
