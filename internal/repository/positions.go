package repository

import (
	"context"

	"papertrader/types"
)

// GetPositions retrieves every open position for the account.
func (db *Database) GetPositions(ctx context.Context, accountId int64) ([]types.Position, error) {
	rows, err := db.positions.PositionsByAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	return convertPositions(rows), nil
}

// PositionsBySymbol retrieves all rows for the (account, symbol) pair. A
// healthy ledger yields zero or one row; callers decide what more than one
// means.
func (db *Database) PositionsBySymbol(ctx context.Context, accountId int64, symbol string) ([]types.Position, error) {
	rows, err := db.positions.PositionsBySymbol(ctx, accountId, symbol)
	if err != nil {
		return nil, err
	}
	return convertPositions(rows), nil
}

func convertPositions(rows []positionRow) []types.Position {
	var positions []types.Position
	for _, row := range rows {
		positions = append(positions, types.Position{
			Id:        row.Id,
			AccountId: row.AccountId,
			Symbol:    row.Symbol,
			Name:      row.Name,
			Quantity:  row.Quantity,
			AvgCost:   row.AvgCost,
		})
	}
	return positions
}
