package ledger

import "sync"

// accountLocks hands out one mutex per account id. Cross-account operations
// never share a lock.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[int64]*sync.Mutex)}
}

func (a *accountLocks) lock(accountId int64) func() {
	a.mu.Lock()
	m, ok := a.locks[accountId]
	if !ok {
		m = &sync.Mutex{}
		a.locks[accountId] = m
	}
	a.mu.Unlock()

	m.Lock()
	return m.Unlock
}
