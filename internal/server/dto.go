package server

import (
	"papertrader/types"

	"github.com/shopspring/decimal"
)

type credentialsDTO struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// orderDTO carries the user's raw input; the ledger does the validation.
type orderDTO struct {
	Symbol string `json:"symbol"`
	Shares string `json:"shares"`
}

type tradeResponse struct {
	Cash     decimal.Decimal    `json:"cash"`
	Position *types.Position    `json:"position"`
	Entry    types.HistoryEntry `json:"entry"`
}

type portfolioResponse struct {
	Username          string       `json:"username"`
	Equity            types.Equity `json:"equity"`
	QuotesUnavailable bool         `json:"quotesUnavailable,omitempty"`
}

type quoteResponse struct {
	Quotes   []types.Quote `json:"quotes"`
	NotFound []string      `json:"notFound,omitempty"`
}

type historyItem struct {
	types.HistoryEntry
	Total decimal.Decimal `json:"total"`
}
