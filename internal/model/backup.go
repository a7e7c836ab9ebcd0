package model

import (
	"encoding/json"
	"time"
)

// BackupMetadata describes a full-namespace snapshot.
type BackupMetadata struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	AppName   string    `json:"appName"`
}

// FullBackup is an opaque round-trip of every key in the persistence
// namespace. Values are carried as raw JSON so restore can write them
// back byte-for-byte; a stored value that is not valid JSON is wrapped
// as a JSON string when the snapshot is taken.
type FullBackup struct {
	Metadata BackupMetadata             `json:"metadata"`
	Data     map[string]json.RawMessage `json:"data"`
}

// AppData is the structured export format: the named collections plus
// identifying metadata. Unlike FullBackup it is a fixed, typed shape.
type AppData struct {
	Students             []Student             `json:"students"`
	Scores               ScoreBook             `json:"scores"`
	Deadlines            []Deadline            `json:"deadlines"`
	SavedClasses         []SavedClass          `json:"savedClasses"`
	Settings             Settings              `json:"settings"`
	Rewards              Rewards               `json:"rewards"`
	MockExamScores       ScoreBook             `json:"mockExamScores"`
	NEAScores            ScoreBook             `json:"neaScores"`
	ContextualChallenges []ContextualChallenge `json:"contextualChallenges"`

	Version    string    `json:"version"`
	ExportDate time.Time `json:"exportDate"`
	AppName    string    `json:"appName"`
}

// AppDataPatch is the import-side counterpart of AppData. Collection
// fields are raw JSON so that an absent field (nil) can be told apart
// from a present-but-empty one; restore only writes fields that are
// present, leaving the rest of the store untouched.
type AppDataPatch struct {
	Students             json.RawMessage `json:"students"`
	Scores               json.RawMessage `json:"scores"`
	Deadlines            json.RawMessage `json:"deadlines"`
	SavedClasses         json.RawMessage `json:"savedClasses"`
	Settings             json.RawMessage `json:"settings"`
	Rewards              json.RawMessage `json:"rewards"`
	MockExamScores       json.RawMessage `json:"mockExamScores"`
	NEAScores            json.RawMessage `json:"neaScores"`
	ContextualChallenges json.RawMessage `json:"contextualChallenges"`

	Version    string `json:"version"`
	ExportDate string `json:"exportDate"`
	AppName    string `json:"appName"`
}

// Fields returns the patch's collection fields paired with the store key
// each one restores into, in a fixed order.
func (p AppDataPatch) Fields() []PatchField {
	return []PatchField{
		{KeyStudents, p.Students},
		{KeyScores, p.Scores},
		{KeyDeadlines, p.Deadlines},
		{KeySavedClasses, p.SavedClasses},
		{KeySettings, p.Settings},
		{KeyRewards, p.Rewards},
		{KeyMockScores, p.MockExamScores},
		{KeyNEAScores, p.NEAScores},
		{KeyChallenges, p.ContextualChallenges},
	}
}

// PatchField is one named collection in an AppDataPatch.
type PatchField struct {
	Key   string
	Value json.RawMessage
}
