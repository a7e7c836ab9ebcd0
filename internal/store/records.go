package store

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pavelanni/neatrack/internal/model"
)

// Record is any id-keyed record a Collection can manage.
type Record interface {
	RecordID() string
}

// Collection is id-keyed CRUD over one KV key. Mutations persist the
// whole list and mark the tracker modified. Reads apply the collection's
// normalize hook, which is the single place legacy field spellings and
// invalid entries are dealt with.
type Collection[T Record] struct {
	kv        *KV
	tracker   *Tracker
	key       string
	normalize func([]T) []T
}

// NewCollection creates a collection bound to key. normalize may be nil.
func NewCollection[T Record](kv *KV, tracker *Tracker, key string, normalize func([]T) []T) *Collection[T] {
	return &Collection[T]{kv: kv, tracker: tracker, key: key, normalize: normalize}
}

// List returns all records, normalized. A missing or corrupt key reads
// as an empty collection.
func (c *Collection[T]) List() []T {
	items := []T{}
	c.kv.Get(c.key, &items)
	if c.normalize != nil {
		items = c.normalize(items)
	}
	return items
}

// Add appends a record and persists.
func (c *Collection[T]) Add(item T) {
	items := append(c.List(), item)
	c.kv.Set(c.key, items)
	c.tracker.MarkModified()
}

// Update replaces the record with a matching ID. An unknown ID is a
// logged no-op and does not touch the store.
func (c *Collection[T]) Update(item T) {
	items := c.List()
	for i := range items {
		if items[i].RecordID() == item.RecordID() {
			items[i] = item
			c.kv.Set(c.key, items)
			c.tracker.MarkModified()
			return
		}
	}
	slog.Warn("update of unknown record ignored", "key", c.key, "id", item.RecordID())
}

// Remove deletes the record with the given ID. Removing an ID that is
// not present is a no-op, not an error.
func (c *Collection[T]) Remove(id string) {
	items := c.List()
	kept := items[:0]
	for _, it := range items {
		if it.RecordID() != id {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return
	}
	c.kv.Set(c.key, kept)
	c.tracker.MarkModified()
}

// FindByID returns the record with the given ID.
func (c *Collection[T]) FindByID(id string) (T, bool) {
	for _, it := range c.List() {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Count returns the number of records.
func (c *Collection[T]) Count() int {
	return len(c.List())
}

// NewID mints an opaque record ID.
func NewID() string {
	return uuid.NewString()
}

// Students returns the student collection. Loading back-fills the
// canonical target-grade and pupil-premium fields from their legacy
// spellings so nothing downstream has to know about them.
func Students(kv *KV, tracker *Tracker) *Collection[model.Student] {
	return NewCollection(kv, tracker, model.KeyStudents, normalizeStudents)
}

func normalizeStudents(students []model.Student) []model.Student {
	for i := range students {
		s := &students[i]
		if s.TargetGrade == "" && s.LegacyKS4Target != "" {
			s.TargetGrade = s.LegacyKS4Target
		}
		if s.LegacyPP {
			s.PupilPremium = true
		}
	}
	return students
}

// Deadlines returns the deadline collection. Entries missing a section
// or a date are filtered out on load, not repaired.
func Deadlines(kv *KV, tracker *Tracker) *Collection[model.Deadline] {
	return NewCollection(kv, tracker, model.KeyDeadlines, normalizeDeadlines)
}

func normalizeDeadlines(deadlines []model.Deadline) []model.Deadline {
	kept := deadlines[:0]
	for _, d := range deadlines {
		if d.SectionID == "" || d.Date == "" {
			slog.Warn("discarding incomplete deadline", "id", d.ID)
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

// Assessments returns the assessment collection.
func Assessments(kv *KV, tracker *Tracker) *Collection[model.Assessment] {
	return NewCollection[model.Assessment](kv, tracker, model.KeyAssessments, nil)
}

// Subjects returns the subject collection.
func Subjects(kv *KV, tracker *Tracker) *Collection[model.Subject] {
	return NewCollection[model.Subject](kv, tracker, model.KeySubjects, nil)
}

// SavedClasses returns the saved-class collection.
func SavedClasses(kv *KV, tracker *Tracker) *Collection[model.SavedClass] {
	return NewCollection[model.SavedClass](kv, tracker, model.KeySavedClasses, nil)
}

// Challenges returns the contextual-challenge collection.
func Challenges(kv *KV, tracker *Tracker) *Collection[model.ContextualChallenge] {
	return NewCollection[model.ContextualChallenge](kv, tracker, model.KeyChallenges, nil)
}
