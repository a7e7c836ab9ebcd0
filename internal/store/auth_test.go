package store

import (
	"testing"

	"github.com/pavelanni/neatrack/internal/model"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	kv := newTestKV(t)
	return NewAuth(kv, model.KeyPasscode, model.KeyAuthSessions)
}

func TestAuthLifecycle(t *testing.T) {
	a := newTestAuth(t)

	if a.HasPasscode() {
		t.Error("fresh store should have no passcode")
	}
	if _, err := a.Login("anything"); err == nil {
		t.Error("login with no passcode set should fail")
	}

	if err := a.SetPasscode("hunter2"); err != nil {
		t.Fatalf("SetPasscode: %v", err)
	}
	if !a.HasPasscode() {
		t.Error("HasPasscode false after SetPasscode")
	}

	if _, err := a.Login("wrong"); err == nil {
		t.Error("wrong passcode accepted")
	}

	token, err := a.Login("hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !a.Valid(token) {
		t.Error("issued token not valid")
	}
	if !a.Authenticated() {
		t.Error("Authenticated false with a live session")
	}

	a.Logout(token)
	if a.Valid(token) {
		t.Error("token valid after logout")
	}
	if a.Authenticated() {
		t.Error("Authenticated true with no sessions")
	}
}

func TestAuthRejectsEmptyPasscode(t *testing.T) {
	a := newTestAuth(t)
	if err := a.SetPasscode(""); err == nil {
		t.Error("empty passcode accepted")
	}
}

func TestAuthEmptyTokenInvalid(t *testing.T) {
	a := newTestAuth(t)
	if a.Valid("") {
		t.Error("empty token reported valid")
	}
}
