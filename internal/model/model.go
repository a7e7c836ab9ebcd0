package model

// AppName is the canonical application name. Structured backups carry it
// and a restore is rejected unless it matches exactly.
const AppName = "NEA Tracker"

// BackupVersion is written into backup metadata.
const BackupVersion = "1.0"

// Persisted key names. "students" and "scores" predate the namespaced
// scheme and are kept for compatibility with existing data files.
const (
	KeyStudents     = "students"
	KeyScores       = "scores"
	KeyNEAScores    = "nea-tracker-nea-scores"
	KeyMockScores   = "nea-tracker-mock-exam-scores"
	KeyDeadlines    = "nea-tracker-deadlines"
	KeySavedClasses = "nea-tracker-saved-classes"
	KeySettings     = "nea-tracker-settings"
	KeyRewards      = "nea-tracker-rewards"
	KeyChallenges   = "nea-tracker-contextual-challenges"
	KeyAssessments  = "nea-tracker-assessments"
	KeySubjects     = "nea-tracker-subjects"
	KeyLastModified = "nea-tracker-last-modified"
	KeyLastSave     = "nea-tracker-last-save"
	KeyAutoBackup   = "nea-tracker-auto-backup"
	KeyPasscode     = "nea-tracker-passcode"
	KeyAuthSessions = "nea-tracker-auth-sessions"
)

// Student is one tracked student.
//
// TargetGrade and PupilPremium each had an older spelling in stored data
// (ks4Target, PP). The legacy fields exist only so old documents decode;
// the student collection back-fills the canonical fields from them on load.
type Student struct {
	ID                    string `json:"id"`
	Name                  string `json:"name" validate:"required"`
	Class                 string `json:"class,omitempty"`
	RegGroup              string `json:"regGroup,omitempty"`
	Sex                   string `json:"sex,omitempty"`
	FSM                   bool   `json:"fsm,omitempty"`
	PupilPremium          bool   `json:"pupilPremium,omitempty"`
	SENStatus             string `json:"senStatus,omitempty"`
	PriorAttainment       string `json:"priorAttainment,omitempty"`
	ReadingAge            string `json:"readingAge,omitempty"`
	TargetGrade           string `json:"targetGrade,omitempty"`
	Avatar                string `json:"avatar,omitempty"`
	Email                 string `json:"email,omitempty"`
	ProjectIdea           string `json:"projectIdea,omitempty"`
	ContextualChallengeID string `json:"contextualChallengeId,omitempty"`

	// Legacy spellings, read-only.
	LegacyKS4Target string `json:"ks4Target,omitempty"`
	LegacyPP        bool   `json:"PP,omitempty"`
}

// RecordID implements store.Record.
func (s Student) RecordID() string { return s.ID }

// ScoreRecord holds one student's marks keyed by section ID, plus
// free-text notes and an optional portfolio link.
type ScoreRecord struct {
	Marks         map[string]int `json:"marks,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	PortfolioLink string         `json:"portfolioLink,omitempty"`
}

// ScoreBook maps student ID to that student's score record.
type ScoreBook map[string]ScoreRecord

// Deadline is a due date for one NEA section. Entries missing a section
// or a date are dropped on load rather than repaired.
type Deadline struct {
	ID          string `json:"id"`
	SectionID   string `json:"sectionId" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Description string `json:"description,omitempty"`
}

// RecordID implements store.Record.
func (d Deadline) RecordID() string { return d.ID }

// Assessment is a simple id-keyed assessment record.
type Assessment struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Subject  string `json:"subject,omitempty"`
	Date     string `json:"date,omitempty"`
	MaxMarks int    `json:"maxMarks,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// RecordID implements store.Record.
func (a Assessment) RecordID() string { return a.ID }

// Subject is a taught subject.
type Subject struct {
	ID        string `json:"id"`
	Name      string `json:"name" validate:"required"`
	ExamBoard string `json:"examBoard,omitempty"`
	Level     string `json:"level,omitempty"`
}

// RecordID implements store.Record.
func (s Subject) RecordID() string { return s.ID }

// SavedClass is a named set of student IDs.
type SavedClass struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds,omitempty"`
}

// RecordID implements store.Record.
func (c SavedClass) RecordID() string { return c.ID }

// ContextualChallenge is one of the exam board's released project briefs.
type ContextualChallenge struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Year        string `json:"year,omitempty"`
}

// RecordID implements store.Record.
func (c ContextualChallenge) RecordID() string { return c.ID }

// Settings is a free-form document owned by the UI layer; the core only
// persists it and carries it through backups.
type Settings map[string]any

// Rewards maps student ID to an arbitrary rewards document.
type Rewards map[string]any
