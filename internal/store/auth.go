package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const authSessionTTL = 24 * time.Hour

// AuthSession is one live login for the single teacher account.
type AuthSession struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Auth gates mutating operations behind the teacher's passcode. The
// bcrypt hash and the live session tokens both sit in the KV namespace,
// so they travel with full backups like everything else.
type Auth struct {
	kv          *KV
	passcodeKey string
	sessionsKey string
}

// NewAuth creates the auth gate over kv using the given keys.
func NewAuth(kv *KV, passcodeKey, sessionsKey string) *Auth {
	return &Auth{kv: kv, passcodeKey: passcodeKey, sessionsKey: sessionsKey}
}

// HasPasscode reports whether a passcode has ever been set.
func (a *Auth) HasPasscode() bool {
	var hash string
	return a.kv.Get(a.passcodeKey, &hash) == Found && hash != ""
}

// SetPasscode hashes and stores the passcode.
func (a *Auth) SetPasscode(passcode string) error {
	if passcode == "" {
		return fmt.Errorf("passcode must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passcode: %w", err)
	}
	a.kv.Set(a.passcodeKey, string(hash))
	return nil
}

// Login verifies the passcode and, on success, issues a session token.
func (a *Auth) Login(passcode string) (string, error) {
	var hash string
	if a.kv.Get(a.passcodeKey, &hash) != Found || hash == "" {
		return "", fmt.Errorf("no passcode set")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(passcode)); err != nil {
		return "", fmt.Errorf("wrong passcode")
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	sessions := a.liveSessions()
	sessions[token] = AuthSession{Token: token, CreatedAt: now, ExpiresAt: now.Add(authSessionTTL)}
	a.kv.Set(a.sessionsKey, sessions)
	return token, nil
}

// Valid reports whether token belongs to a live session.
func (a *Auth) Valid(token string) bool {
	if token == "" {
		return false
	}
	_, ok := a.liveSessions()[token]
	return ok
}

// Logout removes a session token.
func (a *Auth) Logout(token string) {
	sessions := a.liveSessions()
	if _, ok := sessions[token]; !ok {
		return
	}
	delete(sessions, token)
	a.kv.Set(a.sessionsKey, sessions)
}

// Authenticated reports whether any session is live. The autosave loop
// only does work in this state.
func (a *Auth) Authenticated() bool {
	return len(a.liveSessions()) > 0
}

// liveSessions loads the session map, dropping expired entries. Expiry
// is enforced on read; the pruned map is only written back when a
// mutation happens anyway.
func (a *Auth) liveSessions() map[string]AuthSession {
	sessions := map[string]AuthSession{}
	a.kv.Get(a.sessionsKey, &sessions)
	now := time.Now()
	for token, s := range sessions {
		if now.After(s.ExpiresAt) {
			delete(sessions, token)
		}
	}
	return sessions
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
