package auth

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	m := NewSessionManager(time.Hour)

	token, _ := m.Create(7)
	if token == "" {
		t.Fatalf("empty token")
	}

	id, ok := m.AccountId(token)
	if !ok || id != 7 {
		t.Fatalf("resolve = (%d, %v), want (7, true)", id, ok)
	}

	m.Destroy(token)
	if _, ok := m.AccountId(token); ok {
		t.Fatalf("destroyed token still resolves")
	}
}

func TestSessionExpiry(t *testing.T) {
	m := NewSessionManager(-time.Second) // already expired on creation

	token, _ := m.Create(7)
	if _, ok := m.AccountId(token); ok {
		t.Fatalf("expired token still resolves")
	}
}

func TestDestroyAccount(t *testing.T) {
	m := NewSessionManager(time.Hour)

	t1, _ := m.Create(7)
	t2, _ := m.Create(7)
	t3, _ := m.Create(8)

	m.DestroyAccount(7)
	if _, ok := m.AccountId(t1); ok {
		t.Fatalf("token for deleted account still resolves")
	}
	if _, ok := m.AccountId(t2); ok {
		t.Fatalf("token for deleted account still resolves")
	}
	if _, ok := m.AccountId(t3); !ok {
		t.Fatalf("unrelated account's token was dropped")
	}
}
