package server

import (
	"context"
	"errors"
	"net/http"

	"papertrader/internal/auth"
	"papertrader/internal/ledger"
	"papertrader/internal/repository"
	"papertrader/types"

	"github.com/shopspring/decimal"
)

/* ======= Account endpoints ======= */

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var dto credentialsDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	account, err := s.auth.Register(r.Context(), dto.Username, dto.Password, dto.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameTaken):
			httpError(w, http.StatusConflict, err.Error())
		case errors.Is(err, auth.ErrMissingField), errors.Is(err, auth.ErrPasswordMismatch):
			httpError(w, http.StatusBadRequest, err.Error())
		default:
			httpError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var dto credentialsDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	account, err := s.auth.Authenticate(r.Context(), dto.Username, dto.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrMissingField):
			httpError(w, http.StatusUnauthorized, "invalid username or password")
		default:
			httpError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	token, expires := s.sessions.Create(account.Id)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Destroy(cookie.Value)
	}
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnregister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var dto credentialsDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	accountId, err := s.auth.Unregister(r.Context(), dto.Username, dto.Password, dto.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httpError(w, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, auth.ErrMissingField), errors.Is(err, auth.ErrPasswordMismatch):
			httpError(w, http.StatusBadRequest, err.Error())
		default:
			httpError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	s.sessions.DestroyAccount(accountId)
	s.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

/* ======= Trading endpoints ======= */

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request, accountId int64) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	account, err := s.ledger.Account(r.Context(), accountId)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}

	equity, err := s.ledger.ComputeEquity(r.Context(), accountId)
	if err != nil {
		if errors.Is(err, ledger.QuoteUnavailableErr) {
			// Degrade to cash-only rather than showing stale prices.
			writeJSON(w, http.StatusOK, portfolioResponse{
				Username:          account.Username,
				Equity:            types.Equity{Cash: account.Cash, Total: account.Cash},
				QuotesUnavailable: true,
			})
			return
		}
		s.ledgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, portfolioResponse{Username: account.Username, Equity: *equity})
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request, accountId int64) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	quotes, missing, err := s.ledger.Quotes(r.Context(), r.URL.Query().Get("symbols"))
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{Quotes: quotes, NotFound: missing})
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request, accountId int64) {
	s.handleTrade(w, r, accountId, s.ledger.Buy)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request, accountId int64) {
	s.handleTrade(w, r, accountId, s.ledger.Sell)
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request, accountId int64,
	op func(ctx context.Context, accountId int64, symbol, shares string) (*ledger.TradeResult, error)) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var dto orderDTO
	if !decodeBody(w, r, &dto) {
		return
	}
	result, err := op(r.Context(), accountId, dto.Symbol, dto.Shares)
	if err != nil {
		s.ledgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tradeResponse{
		Cash:     result.Account.Cash,
		Position: result.Position,
		Entry:    result.Entry,
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, accountId int64) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := s.ledger.History(r.Context(), accountId)
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	items := make([]historyItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, historyItem{
			HistoryEntry: entry,
			Total:        entry.Price.Mul(decimal.NewFromInt(entry.Quantity)),
		})
	}
	writeJSON(w, http.StatusOK, items)
}
