package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"papertrader/internal/auth"
	"papertrader/internal/ledger"
)

const sessionCookie = "session"

// ===== HTTP adapter =====

type Server struct {
	ledger   *ledger.Ledger
	auth     *auth.Service
	sessions *auth.SessionManager
	mux      *http.ServeMux
}

func New(led *ledger.Ledger, authSvc *auth.Service, sessions *auth.SessionManager) *Server {
	s := &Server{ledger: led, auth: authSvc, sessions: sessions, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/register", s.handleRegister)     // POST
	s.mux.HandleFunc("/login", s.handleLogin)           // POST
	s.mux.HandleFunc("/logout", s.handleLogout)         // POST
	s.mux.HandleFunc("/unregister", s.handleUnregister) // POST

	s.mux.HandleFunc("/portfolio", s.withAccount(s.handlePortfolio)) // GET
	s.mux.HandleFunc("/quote", s.withAccount(s.handleQuote))         // GET
	s.mux.HandleFunc("/buy", s.withAccount(s.handleBuy))             // POST
	s.mux.HandleFunc("/sell", s.withAccount(s.handleSell))           // POST
	s.mux.HandleFunc("/history", s.withAccount(s.handleHistory))     // GET
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Simple JSON-only API
	w.Header().Set("Content-Type", "application/json")
	s.mux.ServeHTTP(w, r)
}

// withAccount resolves the session cookie and passes the authenticated
// account id explicitly into the handler; nothing downstream reads ambient
// session state.
func (s *Server) withAccount(next func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			httpError(w, http.StatusUnauthorized, "login required")
			return
		}
		accountId, ok := s.sessions.AccountId(cookie.Value)
		if !ok {
			httpError(w, http.StatusUnauthorized, "login required")
			return
		}
		next(w, r, accountId)
	}
}

// ledgerError maps the ledger's error kinds onto HTTP statuses. Validation
// failures are the caller's problem; the integrity fault is ours and gets
// logged before a deliberately vague 500.
func (s *Server) ledgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.InvalidInputErr):
		httpError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.UnknownSymbolErr):
		httpError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.InsufficientFundsErr),
		errors.Is(err, ledger.InsufficientSharesErr),
		errors.Is(err, ledger.NoSuchPositionErr):
		httpError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.QuoteUnavailableErr):
		httpError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, ledger.DataIntegrityErr):
		log.Printf("FATAL ledger integrity violation: %v", err)
		httpError(w, http.StatusInternalServerError, "internal data integrity error")
	default:
		httpError(w, http.StatusInternalServerError, err.Error())
	}
}

/* ======= small helpers ======= */

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":  http.StatusText(status),
		"detail": msg,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid payload: "+err.Error())
		return false
	}
	return true
}
