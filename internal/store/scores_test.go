package store

import (
	"testing"

	"github.com/pavelanni/neatrack/internal/model"
)

func TestUpdateScoreClamps(t *testing.T) {
	kv, tr := newTestCollections(t)
	nea := NEAScores(kv, tr)

	tests := []struct {
		name      string
		sectionID string
		mark      int
		want      int
	}{
		{"in range", "section-a", 7, 7},
		{"above max", "section-a", 99, 10},
		{"negative", "section-c", -5, 0},
		{"at max", "section-f", 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nea.UpdateScore("s1", tt.sectionID, tt.mark); got != tt.want {
				t.Errorf("UpdateScore returned %d, want %d", got, tt.want)
			}
			stored := nea.Scores("s1").Marks[tt.sectionID]
			if stored != tt.want {
				t.Errorf("stored %d, want %d (raw input must never persist)", stored, tt.want)
			}
		})
	}
}

func TestScoreBookNotesAndLink(t *testing.T) {
	kv, tr := newTestCollections(t)
	nea := NEAScores(kv, tr)

	nea.UpdateScore("s1", "section-a", 5)
	nea.SetNotes("s1", "good progress")
	nea.SetPortfolioLink("s1", "https://example.com/p")

	rec := nea.Scores("s1")
	if rec.Notes != "good progress" || rec.PortfolioLink != "https://example.com/p" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Marks["section-a"] != 5 {
		t.Error("setting notes clobbered marks")
	}
}

func TestScoreBookRemoveStudent(t *testing.T) {
	kv, tr := newTestCollections(t)
	nea := NEAScores(kv, tr)

	nea.UpdateScore("s1", "section-a", 5)
	tr.MarkSaved()

	nea.RemoveStudent("s1")
	if len(nea.All()) != 0 {
		t.Error("student record not removed")
	}
	if !tr.HasUnsavedChanges() {
		t.Error("removal did not mark modified")
	}

	tr.MarkSaved()
	nea.RemoveStudent("never-there")
	if tr.HasUnsavedChanges() {
		t.Error("no-op removal marked the store dirty")
	}
}

func TestNEAScoresLegacyKeyFallback(t *testing.T) {
	kv, tr := newTestCollections(t)

	// Only the old combined "scores" key exists.
	kv.SetRaw(model.KeyScores, `{"s1":{"marks":{"section-a":9}}}`)

	nea := NEAScores(kv, tr)
	if got := nea.Scores("s1").Marks["section-a"]; got != 9 {
		t.Fatalf("legacy fallback read %d, want 9", got)
	}

	// A write lands on the new key; the legacy key is left alone.
	nea.UpdateScore("s1", "section-b", 4)
	raw, ok := kv.GetRaw(model.KeyNEAScores)
	if !ok || raw == "" {
		t.Error("write did not land on the new key")
	}
	legacy, _ := kv.GetRaw(model.KeyScores)
	if legacy != `{"s1":{"marks":{"section-a":9}}}` {
		t.Errorf("legacy key was rewritten: %s", legacy)
	}
}

func TestMockScoresIndependentOfNEA(t *testing.T) {
	kv, tr := newTestCollections(t)
	nea := NEAScores(kv, tr)
	mock := MockScores(kv, tr)

	nea.UpdateScore("s1", "section-a", 10)
	mock.UpdateScore("s1", "paper1-section-a", 15)

	if got := mock.Scores("s1").Marks["section-a"]; got != 0 {
		t.Error("mock book sees NEA marks")
	}
	if got := nea.Scores("s1").Marks["paper1-section-a"]; got != 0 {
		t.Error("NEA book sees mock marks")
	}
}
