// Package backup produces and restores the two portable document
// formats: the opaque full-namespace snapshot and the structured
// app-data export. One restore entry point dispatches between them.
package backup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pavelanni/neatrack/internal/model"
	"github.com/pavelanni/neatrack/internal/store"
)

// Manager snapshots and restores the persistence namespace.
type Manager struct {
	kv      *store.KV
	tracker *store.Tracker
	now     func() time.Time
}

// NewManager creates a backup manager over kv and tracker.
func NewManager(kv *store.KV, tracker *store.Tracker) *Manager {
	return &Manager{kv: kv, tracker: tracker, now: time.Now}
}

// Snapshot captures every key in the namespace. Values that are valid
// JSON are carried verbatim; anything else is wrapped as a JSON string.
// The autosave key is skipped so snapshots do not nest inside each other.
func (m *Manager) Snapshot() (model.FullBackup, error) {
	keys, err := m.kv.Keys()
	if err != nil {
		return model.FullBackup{}, fmt.Errorf("enumerate keys: %w", err)
	}

	data := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		if key == model.KeyAutoBackup {
			continue
		}
		raw, ok := m.kv.GetRaw(key)
		if !ok {
			continue
		}
		if json.Valid([]byte(raw)) {
			data[key] = json.RawMessage(raw)
			continue
		}
		wrapped, err := json.Marshal(raw)
		if err != nil {
			slog.Warn("skipping unencodable value in backup", "key", key, "error", err)
			continue
		}
		data[key] = wrapped
	}

	return model.FullBackup{
		Metadata: model.BackupMetadata{
			Version:   model.BackupVersion,
			Timestamp: m.now(),
			AppName:   model.AppName,
		},
		Data: data,
	}, nil
}

// Create writes a full-namespace snapshot to w and marks the store
// saved on success.
func (m *Manager) Create(w io.Writer) error {
	doc, err := m.Snapshot()
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	m.tracker.MarkSaved()
	return nil
}

// Filename returns the date-stamped backup filename for today.
func (m *Manager) Filename() string {
	return fmt.Sprintf("neatrack-backup-%s.neabackup", m.now().Format("2006-01-02"))
}

// CreateFile writes a snapshot into dir under a date-stamped name and
// returns the path written.
func (m *Manager) CreateFile(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	path := filepath.Join(dir, m.Filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}
	defer f.Close()
	if err := m.Create(f); err != nil {
		return "", err
	}
	return path, nil
}

// Restore reads a backup document from r and dispatches on its format:
// a full snapshot ({metadata, data}) or a structured app-data export
// (appName at the top level). Anything else is an invalid-format error.
func (m *Manager) Restore(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}
	return m.RestoreDocument(raw)
}

// RestoreDocument restores a parsed-from-bytes backup of either format.
func (m *Manager) RestoreDocument(raw []byte) error {
	var head struct {
		Metadata *json.RawMessage `json:"metadata"`
		Data     *json.RawMessage `json:"data"`
		AppName  *string          `json:"appName"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("parse backup: %w", err)
	}

	switch {
	case head.Metadata != nil && head.Data != nil:
		var doc model.FullBackup
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("parse backup: %w", err)
		}
		return m.restoreFull(doc)
	case head.AppName != nil:
		var patch model.AppDataPatch
		if err := json.Unmarshal(raw, &patch); err != nil {
			return fmt.Errorf("parse backup: %w", err)
		}
		if !m.RestoreAppData(patch) {
			return fmt.Errorf("app data restore rejected")
		}
		return nil
	default:
		return fmt.Errorf("invalid backup format: missing metadata or data")
	}
}

// restoreFull writes every key in the snapshot back into the store.
// A key that fails to re-encode is logged and skipped; the rest of the
// restore proceeds. This path is best-effort by design.
func (m *Manager) restoreFull(doc model.FullBackup) error {
	for key, value := range doc.Data {
		var compact bytes.Buffer
		if err := json.Compact(&compact, value); err != nil {
			slog.Warn("skipping unrestorable key", "key", key, "error", err)
			continue
		}
		m.kv.SetRaw(key, compact.String())
	}
	m.tracker.MarkSaved()
	return nil
}

// AppData reads the named collections into the structured export
// document, each with its documented default when absent.
func (m *Manager) AppData() model.AppData {
	doc := model.AppData{
		Students:             []model.Student{},
		Scores:               model.ScoreBook{},
		Deadlines:            []model.Deadline{},
		SavedClasses:         []model.SavedClass{},
		Settings:             model.Settings{},
		Rewards:              model.Rewards{},
		MockExamScores:       model.ScoreBook{},
		NEAScores:            model.ScoreBook{},
		ContextualChallenges: []model.ContextualChallenge{},
		Version:              model.BackupVersion,
		ExportDate:           m.now(),
		AppName:              model.AppName,
	}
	m.kv.Get(model.KeyStudents, &doc.Students)
	m.kv.Get(model.KeyScores, &doc.Scores)
	m.kv.Get(model.KeyDeadlines, &doc.Deadlines)
	m.kv.Get(model.KeySavedClasses, &doc.SavedClasses)
	m.kv.Get(model.KeySettings, &doc.Settings)
	m.kv.Get(model.KeyRewards, &doc.Rewards)
	m.kv.Get(model.KeyMockScores, &doc.MockExamScores)
	m.kv.Get(model.KeyNEAScores, &doc.NEAScores)
	m.kv.Get(model.KeyChallenges, &doc.ContextualChallenges)
	return doc
}

// RestoreAppData merges a structured export into the store. The whole
// restore is rejected, with no writes at all, unless the document's
// appName matches exactly. Fields absent from the input are left
// untouched: this path is a merge, not a wholesale replace.
func (m *Manager) RestoreAppData(patch model.AppDataPatch) bool {
	if patch.AppName != model.AppName {
		slog.Warn("rejecting app data restore: app name mismatch", "appName", patch.AppName)
		return false
	}
	for _, field := range patch.Fields() {
		if field.Value == nil {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, field.Value); err != nil {
			slog.Error("app data restore failed", "key", field.Key, "error", err)
			return false
		}
		m.kv.SetRaw(field.Key, compact.String())
	}
	return true
}
