package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"papertrader/types"

	"github.com/shopspring/decimal"
)

var (
	InvalidInputErr       = errors.New("symbol and a positive whole share count are required")
	UnknownSymbolErr      = errors.New("no such symbol")
	InsufficientFundsErr  = errors.New("insufficient cash for purchase")
	InsufficientSharesErr = errors.New("not enough shares held, short selling not supported")
	NoSuchPositionErr     = errors.New("no open position for symbol")
	QuoteUnavailableErr   = errors.New("quote source unavailable")
	DataIntegrityErr      = errors.New("duplicate position rows for account and symbol")
)

type accountStore interface {
	GetAccount(ctx context.Context, id int64) (*types.Account, error)
	GetPositions(ctx context.Context, accountId int64) ([]types.Position, error)
	PositionsBySymbol(ctx context.Context, accountId int64, symbol string) ([]types.Position, error)
	GetHistory(ctx context.Context, accountId int64) ([]types.HistoryEntry, error)
	ApplyTrade(ctx context.Context, trade types.Trade) error
}

type quoteSource interface {
	// Lookup returns (nil, nil) when the source has no such symbol.
	Lookup(ctx context.Context, symbol string) (*types.Quote, error)
}

// Ledger maintains, per account, a cash balance, open positions and the
// append-only trade history. Every buy and sell for one account runs under
// that account's lock, so the read-modify-write of cash and position never
// interleaves with another operation on the same account.
type Ledger struct {
	store  accountStore
	quotes quoteSource
	locks  *accountLocks
}

func New(store accountStore, quotes quoteSource) *Ledger {
	return &Ledger{
		store:  store,
		quotes: quotes,
		locks:  newAccountLocks(),
	}
}

// TradeResult is the state visible to the caller after a successful trade.
// Position is nil when a sell closed the position.
type TradeResult struct {
	Account  types.Account
	Position *types.Position
	Entry    types.HistoryEntry
}

// Buy purchases shares of symbol at the current quoted price. Symbol and
// shares arrive as raw user input and are validated here.
func (l *Ledger) Buy(ctx context.Context, accountId int64, symbol, shares string) (*TradeResult, error) {
	sym, qty, err := parseOrder(symbol, shares)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.lock(accountId)
	defer unlock()

	quote, err := l.lookup(ctx, sym)
	if err != nil {
		return nil, err
	}

	account, err := l.store.GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}

	cost := quote.Price.Mul(decimal.NewFromInt(qty))
	if cost.GreaterThan(account.Cash) {
		return nil, fmt.Errorf("%d x %s at %s: %w", qty, quote.Symbol, quote.Price, InsufficientFundsErr)
	}

	existing, err := l.findPosition(ctx, accountId, quote.Symbol)
	if err != nil {
		return nil, err
	}

	pos := types.Position{
		AccountId: accountId,
		Symbol:    quote.Symbol,
		Name:      quote.Name,
		Quantity:  qty,
		AvgCost:   quote.Price,
	}
	if existing != nil {
		pos = *existing
		pos.Quantity = existing.Quantity + qty
		pos.AvgCost = weightedAvg(existing.AvgCost, existing.Quantity, quote.Price, qty)
	}

	entry := types.HistoryEntry{
		AccountId: accountId,
		Symbol:    quote.Symbol,
		Name:      quote.Name,
		Quantity:  qty,
		Price:     quote.Price,
	}
	newCash := account.Cash.Sub(cost)

	if err := l.store.ApplyTrade(ctx, types.Trade{
		AccountId: accountId,
		Entry:     entry,
		NewCash:   newCash,
		Position:  &pos,
	}); err != nil {
		return nil, err
	}

	account.Cash = newCash
	return &TradeResult{Account: *account, Position: &pos, Entry: entry}, nil
}

// Sell disposes shares of symbol at the current quoted price. Selling the
// full quantity deletes the position; a partial sell decrements the quantity
// and leaves the cost basis unchanged.
func (l *Ledger) Sell(ctx context.Context, accountId int64, symbol, shares string) (*TradeResult, error) {
	sym, qty, err := parseOrder(symbol, shares)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.lock(accountId)
	defer unlock()

	quote, err := l.lookup(ctx, sym)
	if err != nil {
		return nil, err
	}

	account, err := l.store.GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}

	existing, err := l.findPosition(ctx, accountId, quote.Symbol)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("%s: %w", quote.Symbol, NoSuchPositionErr)
	}
	if qty > existing.Quantity {
		return nil, fmt.Errorf("%d held, %d requested: %w", existing.Quantity, qty, InsufficientSharesErr)
	}

	var pos *types.Position
	if qty < existing.Quantity {
		remaining := *existing
		remaining.Quantity = existing.Quantity - qty
		pos = &remaining
	}

	entry := types.HistoryEntry{
		AccountId: accountId,
		Symbol:    quote.Symbol,
		Name:      quote.Name,
		Quantity:  -qty,
		Price:     quote.Price,
	}
	proceeds := quote.Price.Mul(decimal.NewFromInt(qty))
	newCash := account.Cash.Add(proceeds)

	if err := l.store.ApplyTrade(ctx, types.Trade{
		AccountId: accountId,
		Entry:     entry,
		NewCash:   newCash,
		Position:  pos,
	}); err != nil {
		return nil, err
	}

	account.Cash = newCash
	return &TradeResult{Account: *account, Position: pos, Entry: entry}, nil
}

// ComputeEquity values every open position at the current quoted price and
// adds cash. A failed lookup for any held symbol fails the whole computation
// rather than substituting a stale or zero price.
func (l *Ledger) ComputeEquity(ctx context.Context, accountId int64) (*types.Equity, error) {
	account, err := l.store.GetAccount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	positions, err := l.store.GetPositions(ctx, accountId)
	if err != nil {
		return nil, err
	}

	total := account.Cash
	holdings := make([]types.Holding, 0, len(positions))
	for _, pos := range positions {
		quote, err := l.quotes.Lookup(ctx, pos.Symbol)
		if err != nil || quote == nil {
			return nil, fmt.Errorf("%s: %w", pos.Symbol, QuoteUnavailableErr)
		}
		value := quote.Price.Mul(decimal.NewFromInt(pos.Quantity))
		holdings = append(holdings, types.Holding{
			Symbol:      pos.Symbol,
			Name:        pos.Name,
			Quantity:    pos.Quantity,
			AvgCost:     pos.AvgCost,
			Price:       quote.Price,
			MarketValue: value,
		})
		total = total.Add(value)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	return &types.Equity{Cash: account.Cash, Holdings: holdings, Total: total}, nil
}

// Account returns the account row, including its current cash balance.
func (l *Ledger) Account(ctx context.Context, accountId int64) (*types.Account, error) {
	return l.store.GetAccount(ctx, accountId)
}

// History returns the account's full trade log, oldest first.
func (l *Ledger) History(ctx context.Context, accountId int64) ([]types.HistoryEntry, error) {
	return l.store.GetHistory(ctx, accountId)
}

// Quotes looks up every symbol in the comma-separated list and partitions
// the input into resolved quotes and symbols the source does not know.
func (l *Ledger) Quotes(ctx context.Context, symbols string) ([]types.Quote, []string, error) {
	var quotes []types.Quote
	var missing []string
	for _, raw := range strings.Split(symbols, ",") {
		sym := strings.ToUpper(strings.TrimSpace(raw))
		if sym == "" {
			continue
		}
		quote, err := l.quotes.Lookup(ctx, sym)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", sym, QuoteUnavailableErr)
		}
		if quote == nil {
			missing = append(missing, sym)
			continue
		}
		quotes = append(quotes, *quote)
	}
	if len(quotes) == 0 && len(missing) == 0 {
		return nil, nil, InvalidInputErr
	}
	return quotes, missing, nil
}

func (l *Ledger) lookup(ctx context.Context, symbol string) (*types.Quote, error) {
	quote, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, QuoteUnavailableErr)
	}
	if quote == nil {
		return nil, fmt.Errorf("%s: %w", symbol, UnknownSymbolErr)
	}
	return quote, nil
}

// findPosition returns the single open position for the pair, nil when
// absent. More than one row means the uniqueness invariant was already
// violated; that is surfaced as fatal, never resolved by taking the first.
func (l *Ledger) findPosition(ctx context.Context, accountId int64, symbol string) (*types.Position, error) {
	rows, err := l.store.PositionsBySymbol(ctx, accountId, symbol)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, nil
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("account %d symbol %s has %d rows: %w", accountId, symbol, len(rows), DataIntegrityErr)
	}
}

func parseOrder(symbol, shares string) (string, int64, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return "", 0, fmt.Errorf("missing symbol: %w", InvalidInputErr)
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(shares), 10, 64)
	if err != nil || qty <= 0 {
		return "", 0, fmt.Errorf("shares %q: %w", shares, InvalidInputErr)
	}
	return sym, qty, nil
}

func weightedAvg(existingAvgCost decimal.Decimal, existingQty int64, newPrice decimal.Decimal, newQty int64) decimal.Decimal {
	if existingQty == 0 {
		return newPrice
	}
	oldQty := decimal.NewFromInt(existingQty)
	addQty := decimal.NewFromInt(newQty)
	return existingAvgCost.Mul(oldQty).
		Add(newPrice.Mul(addQty)).
		Div(oldQty.Add(addQty))
}
