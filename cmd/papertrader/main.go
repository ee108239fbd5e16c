package main

import (
	"context"
	"log"
	"net/http"

	"papertrader/internal/auth"
	"papertrader/internal/config"
	"papertrader/internal/ledger"
	"papertrader/internal/quote"
	"papertrader/internal/repository"
	"papertrader/internal/server"
	"papertrader/types"
)

type quoteSource interface {
	Lookup(ctx context.Context, symbol string) (*types.Quote, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := repository.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var quotes quoteSource
	switch cfg.QuoteProvider {
	case "alphavantage", "alpha", "av":
		p, err := quote.NewAlphaVantageProviderFromEnv()
		if err != nil {
			log.Printf("Alpha Vantage not configured (%v); falling back to Yahoo.", err)
			quotes = quote.NewYahooProvider()
		} else {
			quotes = p
		}
	case "static":
		quotes = quote.NewStaticProvider(quote.DevQuotes())
	default:
		quotes = quote.NewYahooProvider()
	}

	led := ledger.New(&db, quotes)
	authSvc := auth.NewService(&db, cfg.StartingCash)
	sessions := auth.NewSessionManager(cfg.SessionTTL)
	srv := server.New(led, authSvc, sessions)

	log.Printf("papertrader listening on %s (quotes: %s)", cfg.Addr, cfg.QuoteProvider)
	log.Fatal(http.ListenAndServe(cfg.Addr, srv))
}
