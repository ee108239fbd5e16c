package types

import "github.com/shopspring/decimal"

// Position is one open holding for one account. Quantity is a whole number
// of shares and stays positive for as long as the row exists; a fully sold
// position is deleted, never kept at zero.
type Position struct {
	Id        int64           `json:"id"`
	AccountId int64           `json:"accountId"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	AvgCost   decimal.Decimal `json:"avgCost"`
}
