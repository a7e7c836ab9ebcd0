// Package store is the local persistence layer: a JSON-over-sqlite
// key-value namespace, id-keyed record collections on top of it, score
// books, and the modification tracker that drives autosave.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	_ "modernc.org/sqlite"
)

// Lookup reports how a Get resolved. Absent and Corrupt both leave the
// caller's default in place; keeping them distinct lets tests (and logs)
// tell a missing key from a damaged one.
type Lookup int

const (
	// Found means the key existed and decoded into the destination.
	Found Lookup = iota
	// Absent means the key does not exist.
	Absent
	// Corrupt means the stored value exists but did not decode.
	Corrupt
	// Unavailable means the underlying storage reported an error.
	Unavailable
)

// KV is a typed get/set wrapper over a single sqlite table of
// JSON-encoded values. Writes are last-write-wins per key: a second
// process on the same file silently clobbers this one, which is the
// documented single-user model, not a bug.
type KV struct {
	mu sync.Mutex
	db *sql.DB
}

// New opens (creating if needed) the store at path. Use ":memory:" for tests.
func New(path string) (*KV, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	kv := &KV{db: db}
	if err := kv.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return kv, nil
}

func (kv *KV) Close() error {
	return kv.db.Close()
}

func (kv *KV) migrate() error {
	_, err := kv.db.Exec(`
	CREATE TABLE IF NOT EXISTS app_data (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

// Get reads and JSON-decodes the value at key into dst. On anything but
// Found, dst is left untouched so a prepopulated default stands. Get
// never fails the caller; Corrupt and Unavailable are logged here.
//
// The decode goes through a fresh value of dst's type: json.Unmarshal
// fills fields as it goes, so decoding straight into dst would leave it
// half-populated when a later field has the wrong type.
func (kv *KV) Get(key string, dst any) Lookup {
	raw, ok, err := kv.getRaw(key)
	if err != nil {
		slog.Error("store read failed", "key", key, "error", err)
		return Unavailable
	}
	if !ok {
		return Absent
	}
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		slog.Error("store read into non-pointer destination", "key", key)
		return Unavailable
	}
	tmp := reflect.New(rv.Type().Elem())
	if err := json.Unmarshal([]byte(raw), tmp.Interface()); err != nil {
		slog.Error("stored value is corrupt, using default", "key", key, "error", err)
		return Corrupt
	}
	rv.Elem().Set(tmp.Elem())
	return Found
}

// Set JSON-encodes v and writes it at key. Failures are logged and
// swallowed; the previously persisted value stays intact.
func (kv *KV) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("store encode failed", "key", key, "error", err)
		return
	}
	kv.SetRaw(key, string(raw))
}

// GetRaw returns the stored JSON text at key without decoding it.
func (kv *KV) GetRaw(key string) (string, bool) {
	raw, ok, err := kv.getRaw(key)
	if err != nil {
		slog.Error("store read failed", "key", key, "error", err)
		return "", false
	}
	return raw, ok
}

// SetRaw writes pre-encoded JSON text at key. Like Set, write failures
// are logged and swallowed.
func (kv *KV) SetRaw(key, raw string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	_, err := kv.db.Exec(
		`INSERT INTO app_data (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		key, raw, raw,
	)
	if err != nil {
		slog.Error("store write failed", "key", key, "error", err)
	}
}

func (kv *KV) getRaw(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	var raw string
	err := kv.db.QueryRow(`SELECT value FROM app_data WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return raw, true, nil
}

// Keys enumerates every key in the namespace, sorted.
func (kv *KV) Keys() ([]string, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	rows, err := kv.db.Query(`SELECT key FROM app_data ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Delete removes a key. Missing keys are a no-op.
func (kv *KV) Delete(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if _, err := kv.db.Exec(`DELETE FROM app_data WHERE key = ?`, key); err != nil {
		slog.Error("store delete failed", "key", key, "error", err)
	}
}

// Reset wipes the entire namespace. This is the full data reset path.
func (kv *KV) Reset() error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	_, err := kv.db.Exec(`DELETE FROM app_data`)
	return err
}
