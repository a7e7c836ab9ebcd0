package store

import (
	"github.com/pavelanni/neatrack/internal/grade"
	"github.com/pavelanni/neatrack/internal/model"
)

// ScoreBook is per-student marks for one component (NEA or mock exams),
// stored as a single keyed document. Marks are clamped into the section
// catalog's range on write so an out-of-range mark is never persisted.
type ScoreBook struct {
	kv        *KV
	tracker   *Tracker
	key       string
	legacyKey string
}

// NEAScores returns the NEA score book. Reads fall back to the legacy
// "scores" key for data written before the keys were split per component.
func NEAScores(kv *KV, tracker *Tracker) *ScoreBook {
	return &ScoreBook{kv: kv, tracker: tracker, key: model.KeyNEAScores, legacyKey: model.KeyScores}
}

// MockScores returns the mock-exam score book.
func MockScores(kv *KV, tracker *Tracker) *ScoreBook {
	return &ScoreBook{kv: kv, tracker: tracker, key: model.KeyMockScores}
}

// All returns the whole book. Missing or corrupt data reads as empty.
func (b *ScoreBook) All() model.ScoreBook {
	book := model.ScoreBook{}
	if b.kv.Get(b.key, &book) == Found {
		return book
	}
	if b.legacyKey != "" {
		b.kv.Get(b.legacyKey, &book)
	}
	return book
}

// Scores returns one student's record, empty if none exists.
func (b *ScoreBook) Scores(studentID string) model.ScoreRecord {
	return b.All()[studentID]
}

// UpdateScore sets one mark, clamped into [0, maxMarks(sectionID)].
// It returns the mark actually stored.
func (b *ScoreBook) UpdateScore(studentID, sectionID string, mark int) int {
	clamped := grade.ClampMark(sectionID, mark)
	b.mutate(studentID, func(rec *model.ScoreRecord) {
		if rec.Marks == nil {
			rec.Marks = map[string]int{}
		}
		rec.Marks[sectionID] = clamped
	})
	return clamped
}

// SetNotes sets a student's free-text notes.
func (b *ScoreBook) SetNotes(studentID, notes string) {
	b.mutate(studentID, func(rec *model.ScoreRecord) {
		rec.Notes = notes
	})
}

// SetPortfolioLink sets a student's portfolio link.
func (b *ScoreBook) SetPortfolioLink(studentID, link string) {
	b.mutate(studentID, func(rec *model.ScoreRecord) {
		rec.PortfolioLink = link
	})
}

// RemoveStudent drops a student's record. Unknown students are a no-op.
func (b *ScoreBook) RemoveStudent(studentID string) {
	book := b.All()
	if _, ok := book[studentID]; !ok {
		return
	}
	delete(book, studentID)
	b.kv.Set(b.key, book)
	b.tracker.MarkModified()
}

func (b *ScoreBook) mutate(studentID string, fn func(*model.ScoreRecord)) {
	book := b.All()
	rec := book[studentID]
	fn(&rec)
	book[studentID] = rec
	b.kv.Set(b.key, book)
	b.tracker.MarkModified()
}
