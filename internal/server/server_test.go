package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"papertrader/internal/auth"
	"papertrader/internal/ledger"
	"papertrader/internal/quote"
	"papertrader/internal/repository"
	"papertrader/types"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Account Store backing both the ledger and the
// auth service in tests.
type memStore struct {
	nextId    int64
	accounts  map[int64]*types.Account
	positions []types.Position
	history   []types.HistoryEntry
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[int64]*types.Account)}
}

func (m *memStore) CreateAccount(_ context.Context, username, passwordHash string, cash decimal.Decimal) (*types.Account, error) {
	for _, account := range m.accounts {
		if account.Username == username {
			return nil, fmt.Errorf("username %s: %w", username, repository.ErrUsernameTaken)
		}
	}
	m.nextId++
	account := &types.Account{Id: m.nextId, Username: username, PasswordHash: passwordHash, Cash: cash}
	m.accounts[account.Id] = account
	return account, nil
}

func (m *memStore) GetAccount(_ context.Context, id int64) (*types.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %d: %w", id, repository.ErrAccountNotFound)
	}
	copied := *account
	return &copied, nil
}

func (m *memStore) GetAccountByUsername(_ context.Context, username string) (*types.Account, error) {
	for _, account := range m.accounts {
		if account.Username == username {
			copied := *account
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("username %s: %w", username, repository.ErrAccountNotFound)
}

func (m *memStore) DeleteAccount(_ context.Context, id int64) error {
	if _, ok := m.accounts[id]; !ok {
		return fmt.Errorf("account %d: %w", id, repository.ErrAccountNotFound)
	}
	delete(m.accounts, id)
	var positions []types.Position
	for _, pos := range m.positions {
		if pos.AccountId != id {
			positions = append(positions, pos)
		}
	}
	m.positions = positions
	var history []types.HistoryEntry
	for _, entry := range m.history {
		if entry.AccountId != id {
			history = append(history, entry)
		}
	}
	m.history = history
	return nil
}

func (m *memStore) GetPositions(_ context.Context, accountId int64) ([]types.Position, error) {
	var out []types.Position
	for _, pos := range m.positions {
		if pos.AccountId == accountId {
			out = append(out, pos)
		}
	}
	return out, nil
}

func (m *memStore) PositionsBySymbol(_ context.Context, accountId int64, symbol string) ([]types.Position, error) {
	var out []types.Position
	for _, pos := range m.positions {
		if pos.AccountId == accountId && pos.Symbol == symbol {
			out = append(out, pos)
		}
	}
	return out, nil
}

func (m *memStore) GetHistory(_ context.Context, accountId int64) ([]types.HistoryEntry, error) {
	var out []types.HistoryEntry
	for _, entry := range m.history {
		if entry.AccountId == accountId {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *memStore) ApplyTrade(_ context.Context, trade types.Trade) error {
	entry := trade.Entry
	entry.Id = int64(len(m.history) + 1)
	m.history = append(m.history, entry)
	m.accounts[trade.AccountId].Cash = trade.NewCash

	idx := -1
	for i, pos := range m.positions {
		if pos.AccountId == trade.AccountId && pos.Symbol == trade.Entry.Symbol {
			idx = i
			break
		}
	}
	switch {
	case trade.Position == nil && idx >= 0:
		m.positions = append(m.positions[:idx], m.positions[idx+1:]...)
	case trade.Position != nil && idx >= 0:
		m.positions[idx] = *trade.Position
	case trade.Position != nil:
		m.positions = append(m.positions, *trade.Position)
	}
	return nil
}

func newTestServer() *httptest.Server {
	store := newMemStore()
	quotes := quote.NewStaticProvider(map[string]types.Quote{
		"AAPL": {Symbol: "AAPL", Name: "Apple Inc.", Price: decimal.RequireFromString("5.00")},
		"MSFT": {Symbol: "MSFT", Name: "Microsoft", Price: decimal.RequireFromString("10.00")},
	})
	led := ledger.New(store, quotes)
	authSvc := auth.NewService(store, decimal.NewFromInt(10000))
	sessions := auth.NewSessionManager(time.Hour)
	return httptest.NewServer(New(led, authSvc, sessions))
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	jar := &cookieJar{}
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

// cookieJar keeps the session cookie between requests.
type cookieJar struct {
	cookies []*http.Cookie
}

func (j *cookieJar) SetCookies(_ *url.URL, cookies []*http.Cookie) { j.cookies = cookies }
func (j *cookieJar) Cookies(_ *url.URL) []*http.Cookie             { return j.cookies }

func (c *client) do(method, path string, body any) (*http.Response, []byte) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func TestTradingFlow(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	c := newClient(t, srv)

	creds := map[string]string{"username": "alice", "password": "pw", "confirm_password": "pw"}

	resp, body := c.do(http.MethodPost, "/register", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.StatusCode, body)
	}

	resp, body = c.do(http.MethodPost, "/login", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, body)
	}

	resp, body = c.do(http.MethodPost, "/buy", map[string]string{"symbol": "AAPL", "shares": "10"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("buy: %d %s", resp.StatusCode, body)
	}
	var trade tradeResponse
	if err := json.Unmarshal(body, &trade); err != nil {
		t.Fatalf("decode buy response: %v", err)
	}
	if !trade.Cash.Equal(decimal.RequireFromString("9950")) {
		t.Errorf("cash after buy = %s, want 9950", trade.Cash)
	}
	if trade.Position == nil || trade.Position.Quantity != 10 {
		t.Errorf("position after buy = %+v", trade.Position)
	}

	resp, body = c.do(http.MethodGet, "/portfolio", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("portfolio: %d %s", resp.StatusCode, body)
	}
	var pf portfolioResponse
	if err := json.Unmarshal(body, &pf); err != nil {
		t.Fatalf("decode portfolio: %v", err)
	}
	if !pf.Equity.Total.Equal(decimal.RequireFromString("10000")) {
		t.Errorf("equity = %s, want 10000 (cash 9950 + 10 AAPL at 5.00)", pf.Equity.Total)
	}

	resp, body = c.do(http.MethodPost, "/sell", map[string]string{"symbol": "AAPL", "shares": "10"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sell: %d %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, &trade); err != nil {
		t.Fatalf("decode sell response: %v", err)
	}
	if trade.Position != nil {
		t.Errorf("position should be closed, got %+v", trade.Position)
	}

	resp, body = c.do(http.MethodGet, "/history", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("history: %d %s", resp.StatusCode, body)
	}
	var items []historyItem
	if err := json.Unmarshal(body, &items); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(items) != 2 || items[0].Quantity != 10 || items[1].Quantity != -10 {
		t.Errorf("history = %+v", items)
	}

	resp, _ = c.do(http.MethodPost, "/logout", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: %d", resp.StatusCode)
	}
	resp, _ = c.do(http.MethodGet, "/portfolio", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("portfolio after logout: %d, want 401", resp.StatusCode)
	}
}

func TestTradeErrorsMapToStatuses(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	c := newClient(t, srv)

	creds := map[string]string{"username": "bob", "password": "pw", "confirm_password": "pw"}
	c.do(http.MethodPost, "/register", creds)
	c.do(http.MethodPost, "/login", creds)

	tests := []struct {
		name   string
		path   string
		order  map[string]string
		status int
	}{
		{"unknown symbol", "/buy", map[string]string{"symbol": "ZZZZ", "shares": "1"}, http.StatusNotFound},
		{"zero shares", "/buy", map[string]string{"symbol": "AAPL", "shares": "0"}, http.StatusBadRequest},
		{"insufficient funds", "/buy", map[string]string{"symbol": "MSFT", "shares": "99999"}, http.StatusUnprocessableEntity},
		{"sell without position", "/sell", map[string]string{"symbol": "MSFT", "shares": "1"}, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := c.do(http.MethodPost, tc.path, tc.order)
			if resp.StatusCode != tc.status {
				t.Fatalf("got %d want %d (%s)", resp.StatusCode, tc.status, body)
			}
		})
	}
}

func TestAuthEndpoints(t *testing.T) {
	srv := newTestServer()
	defer srv.Close()
	c := newClient(t, srv)

	creds := map[string]string{"username": "carol", "password": "pw", "confirm_password": "pw"}

	if resp, _ := c.do(http.MethodPost, "/register", creds); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d", resp.StatusCode)
	}
	if resp, _ := c.do(http.MethodPost, "/register", creds); resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: %d, want 409", resp.StatusCode)
	}

	bad := map[string]string{"username": "carol", "password": "wrong"}
	if resp, _ := c.do(http.MethodPost, "/login", bad); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: %d, want 401", resp.StatusCode)
	}

	if resp, _ := c.do(http.MethodPost, "/unregister", creds); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unregister: %d, want 204", resp.StatusCode)
	}
	if resp, _ := c.do(http.MethodPost, "/login", creds); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("login after unregister: %d, want 401", resp.StatusCode)
	}
}
