package repository

import (
	"context"

	"papertrader/types"
)

// GetHistory retrieves the account's trade log, oldest first.
func (db *Database) GetHistory(ctx context.Context, accountId int64) ([]types.HistoryEntry, error) {
	rows, err := db.history.HistoryByAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	var entries []types.HistoryEntry
	for _, row := range rows {
		entries = append(entries, types.HistoryEntry{
			Id:        row.Id,
			AccountId: row.AccountId,
			Symbol:    row.Symbol,
			Name:      row.Name,
			Quantity:  row.Quantity,
			Price:     row.Price,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

// ApplyTrade persists one trade's full write set atomically.
func (db *Database) ApplyTrade(ctx context.Context, trade types.Trade) error {
	return db.trades.ApplyTrade(ctx, trade)
}
