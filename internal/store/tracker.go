package store

import (
	"sync"
	"time"

	"github.com/pavelanni/neatrack/internal/model"
)

// Tracker is the dirty-state tracker: an in-process flag plus persisted
// last-modified and last-saved timestamps. Every mutating collection
// operation goes through MarkModified; save/backup paths call MarkSaved.
type Tracker struct {
	mu    sync.Mutex
	kv    *KV
	dirty bool
	now   func() time.Time
}

// NewTracker creates a tracker over kv. The dirty flag starts false, but
// HasUnsavedChanges is pessimistic on a fresh store (see below), so a
// new process still reports unsaved work until something resolves it.
func NewTracker(kv *KV) *Tracker {
	return &Tracker{kv: kv, now: time.Now}
}

// MarkModified flags unsaved changes and persists the modification time.
func (t *Tracker) MarkModified() {
	t.mu.Lock()
	t.dirty = true
	t.mu.Unlock()
	t.kv.Set(model.KeyLastModified, t.now())
}

// MarkSaved clears the dirty flag and persists the save time. On a
// store that has never recorded a modification it back-fills that
// timestamp too, so one save fully resolves the pessimistic fresh
// state and HasUnsavedChanges actually flips to false.
func (t *Tracker) MarkSaved() {
	t.mu.Lock()
	t.dirty = false
	t.mu.Unlock()
	now := t.now()
	if _, ok := t.LastModified(); !ok {
		t.kv.Set(model.KeyLastModified, now)
	}
	t.kv.Set(model.KeyLastSave, now)
}

// HasUnsavedChanges reports dirty state. It is deliberately pessimistic:
// with no save or modification timestamp ever persisted it reports true,
// so a fresh install produces an initial snapshot instead of assuming
// it is clean.
func (t *Tracker) HasUnsavedChanges() bool {
	t.mu.Lock()
	dirty := t.dirty
	t.mu.Unlock()
	if dirty {
		return true
	}
	if _, ok := t.LastSaved(); !ok {
		return true
	}
	if _, ok := t.LastModified(); !ok {
		return true
	}
	return false
}

// LastModified returns the persisted modification timestamp, if any.
func (t *Tracker) LastModified() (time.Time, bool) {
	return t.timestamp(model.KeyLastModified)
}

// LastSaved returns the persisted save timestamp, if any.
func (t *Tracker) LastSaved() (time.Time, bool) {
	return t.timestamp(model.KeyLastSave)
}

func (t *Tracker) timestamp(key string) (time.Time, bool) {
	var ts time.Time
	if t.kv.Get(key, &ts) != Found {
		return time.Time{}, false
	}
	return ts, true
}
