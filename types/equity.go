package types

import "github.com/shopspring/decimal"

// Holding is one position valued at the current market price.
type Holding struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name"`
	Quantity    int64           `json:"quantity"`
	AvgCost     decimal.Decimal `json:"avgCost"`
	Price       decimal.Decimal `json:"price"`
	MarketValue decimal.Decimal `json:"marketValue"`
}

// Equity is the account's cash plus the market value of every open position.
type Equity struct {
	Cash     decimal.Decimal `json:"cash"`
	Holdings []Holding       `json:"holdings"`
	Total    decimal.Decimal `json:"total"`
}
