package types

import "github.com/shopspring/decimal"

// Trade is the complete write set of one buy or sell: the history row to
// append, the resulting cash balance, and the resulting position. The store
// applies all three in a single transaction. A nil Position deletes the
// (AccountId, Entry.Symbol) row.
type Trade struct {
	AccountId int64
	Entry     HistoryEntry
	NewCash   decimal.Decimal
	Position  *Position
}
