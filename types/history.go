package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry is one row of the append-only trade log. Quantity is signed:
// positive for a buy, negative for a sell.
type HistoryEntry struct {
	Id        int64           `json:"id"`
	AccountId int64           `json:"accountId"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"createdAt"`
}
