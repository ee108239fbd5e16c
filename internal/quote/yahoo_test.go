package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newYahooTestServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		if strings.Contains(r.URL.Path, "ZZZZ") {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"chart": {
				"result": [{
					"meta": {
						"symbol": "AAPL",
						"shortName": "Apple Inc.",
						"regularMarketPrice": 187.32
					},
					"timestamp": [1700000000],
					"indicators": {"quote": [{"close": [187.00]}]}
				}],
				"error": null
			}
		}`)
	}))
}

func TestYahooProviderLookup(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider()
	p.baseURL = srv.URL

	got, err := p.Lookup(context.Background(), " aapl ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected quote, got nil")
	}
	if got.Symbol != "AAPL" || got.Name != "Apple Inc." {
		t.Errorf("quote = %+v", got)
	}
	if want := decimal.RequireFromString("187.32"); !got.Price.Equal(want) {
		t.Errorf("price = %s, want %s", got.Price, want)
	}
}

func TestYahooProviderUnknownSymbol(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider()
	p.baseURL = srv.URL

	got, err := p.Lookup(context.Background(), "ZZZZ")
	if err != nil {
		t.Fatalf("unknown symbol must not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil quote, got %+v", got)
	}
}

func TestYahooProviderCaches(t *testing.T) {
	hits := 0
	srv := newYahooTestServer(t, &hits)
	defer srv.Close()

	p := NewYahooProvider()
	p.baseURL = srv.URL
	p.ttl = time.Minute

	for i := 0; i < 3; i++ {
		if _, err := p.Lookup(context.Background(), "AAPL"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if hits != 1 {
		t.Fatalf("expected 1 upstream hit, got %d", hits)
	}
}

func TestYahooProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewYahooProvider()
	p.baseURL = srv.URL

	if _, err := p.Lookup(context.Background(), "AAPL"); err == nil {
		t.Fatalf("expected error on upstream failure")
	}
}
