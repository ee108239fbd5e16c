package types

import "github.com/shopspring/decimal"

// Quote is an ephemeral price lookup result, never persisted.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}
