// Package handler is the HTTP surface the UI layer talks to: record
// CRUD, scores and grade summaries, dirty-state, and backup transfer,
// all as JSON over chi.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pavelanni/neatrack/internal/backup"
	"github.com/pavelanni/neatrack/internal/model"
	"github.com/pavelanni/neatrack/internal/store"
)

// Config holds runtime handler options.
type Config struct {
	// SecureCookies sets the Secure flag on session cookies. Disable
	// for plain-HTTP local use.
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	kv       *store.KV
	tracker  *store.Tracker
	auth     *store.Auth
	backups  *backup.Manager
	validate *validator.Validate
	config   Config

	students    *store.Collection[model.Student]
	deadlines   *store.Collection[model.Deadline]
	assessments *store.Collection[model.Assessment]
	subjects    *store.Collection[model.Subject]
	classes     *store.Collection[model.SavedClass]
	challenges  *store.Collection[model.ContextualChallenge]
	neaScores   *store.ScoreBook
	mockScores  *store.ScoreBook
}

// New creates a Handler over the store.
func New(kv *store.KV, tracker *store.Tracker, auth *store.Auth, backups *backup.Manager, cfg Config) *Handler {
	return &Handler{
		kv:       kv,
		tracker:  tracker,
		auth:     auth,
		backups:  backups,
		validate: validator.New(),
		config:   cfg,

		students:    store.Students(kv, tracker),
		deadlines:   store.Deadlines(kv, tracker),
		assessments: store.Assessments(kv, tracker),
		subjects:    store.Subjects(kv, tracker),
		classes:     store.SavedClasses(kv, tracker),
		challenges:  store.Challenges(kv, tracker),
		neaScores:   store.NEAScores(kv, tracker),
		mockScores:  store.MockScores(kv, tracker),
	}
}

// Routes registers all HTTP routes. Only login and the state endpoint
// are open; everything else, reads included, sits behind the session
// gate.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Get("/api/state", h.handleState)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/students", h.handleListStudents)
		r.Post("/api/students", h.handleAddStudent)
		r.Get("/api/students/{id}", h.handleGetStudent)
		r.Put("/api/students/{id}", h.handleUpdateStudent)
		r.Delete("/api/students/{id}", h.handleDeleteStudent)
		r.Get("/api/students/{id}/summary", h.handleStudentSummary)

		r.Get("/api/deadlines", h.handleListDeadlines)
		r.Post("/api/deadlines", h.handleAddDeadline)
		r.Put("/api/deadlines/{id}", h.handleUpdateDeadline)
		r.Delete("/api/deadlines/{id}", h.handleDeleteDeadline)

		r.Get("/api/assessments", h.handleListAssessments)
		r.Post("/api/assessments", h.handleAddAssessment)
		r.Put("/api/assessments/{id}", h.handleUpdateAssessment)
		r.Delete("/api/assessments/{id}", h.handleDeleteAssessment)

		r.Get("/api/subjects", h.handleListSubjects)
		r.Post("/api/subjects", h.handleAddSubject)
		r.Put("/api/subjects/{id}", h.handleUpdateSubject)
		r.Delete("/api/subjects/{id}", h.handleDeleteSubject)

		r.Get("/api/scores/{component}/{studentID}", h.handleGetScores)
		r.Put("/api/scores/{component}/{studentID}/{sectionID}", h.handleUpdateScore)
		r.Put("/api/scores/{component}/{studentID}", h.handleUpdateScoreRecord)

		r.Post("/api/save", h.handleSave)
		r.Get("/api/backup", h.handleDownloadBackup)
		r.Post("/api/restore", h.handleRestore)
		r.Get("/api/export", h.handleExport)
		r.Post("/api/import", h.handleImport)
	})
}

// handleState reports dirty-tracking state for the unsaved-changes
// indicator.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	state := map[string]any{
		"hasUnsavedChanges": h.tracker.HasUnsavedChanges(),
	}
	if ts, ok := h.tracker.LastModified(); ok {
		state["lastModified"] = ts
	}
	if ts, ok := h.tracker.LastSaved(); ok {
		state["lastSaved"] = ts
	}
	h.respondJSON(w, http.StatusOK, state)
}

// handleSave is the manual save action: snapshot under the autosave key
// and clear the dirty flag.
func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := h.backups.SaveSnapshotKey(); err != nil {
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	h.tracker.MarkSaved()
	h.respondJSON(w, http.StatusOK, map[string]bool{"saved": true})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}
