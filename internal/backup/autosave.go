package backup

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pavelanni/neatrack/internal/model"
)

// DefaultAutosaveInterval is how often the autosave loop wakes up.
const DefaultAutosaveInterval = 5 * time.Minute

// Autosave runs the periodic snapshot loop until ctx is done. Each tick
// does work only while authenticated reports true and the tracker has
// unsaved changes; a successful snapshot marks the store saved. Stopping
// the context makes further ticks a no-op immediately.
func (m *Manager) Autosave(ctx context.Context, interval time.Duration, authenticated func() bool) {
	if interval <= 0 {
		interval = DefaultAutosaveInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.autosaveTick(authenticated)
		}
	}
}

func (m *Manager) autosaveTick(authenticated func() bool) {
	if authenticated != nil && !authenticated() {
		return
	}
	if !m.tracker.HasUnsavedChanges() {
		return
	}
	if err := m.SaveSnapshotKey(); err != nil {
		slog.Error("autosave failed", "error", err)
		return
	}
	m.tracker.MarkSaved()
	slog.Info("autosaved snapshot")
}

// SaveSnapshotKey stores a full snapshot under the auto-backup key so
// the most recent autosave travels with the data file itself.
func (m *Manager) SaveSnapshotKey() error {
	doc, err := m.Snapshot()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	m.kv.SetRaw(model.KeyAutoBackup, string(raw))
	return nil
}
