package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/neatrack/internal/model"
	"github.com/pavelanni/neatrack/internal/store"
)

func (h *Handler) handleListStudents(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.students.List())
}

func (h *Handler) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	s, ok := h.students.FindByID(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	h.respondJSON(w, http.StatusOK, s)
}

func (h *Handler) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	var s model.Student
	if !h.decodeJSON(w, r, &s) {
		return
	}
	if err := h.validate.Struct(s); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if s.ID == "" {
		s.ID = store.NewID()
	}
	if _, exists := h.students.FindByID(s.ID); exists {
		http.Error(w, "duplicate student id", http.StatusConflict)
		return
	}
	h.students.Add(s)
	h.respondJSON(w, http.StatusCreated, s)
}

func (h *Handler) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var s model.Student
	if !h.decodeJSON(w, r, &s) {
		return
	}
	s.ID = chi.URLParam(r, "id")
	if err := h.validate.Struct(s); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if _, ok := h.students.FindByID(s.ID); !ok {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	h.students.Update(s)
	h.respondJSON(w, http.StatusOK, s)
}

// handleDeleteStudent removes the student and both of their score
// records. Deleting an unknown id succeeds without changing anything.
func (h *Handler) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.students.Remove(id)
	h.neaScores.RemoveStudent(id)
	h.mockScores.RemoveStudent(id)
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleListDeadlines(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.deadlines.List())
}

func (h *Handler) handleAddDeadline(w http.ResponseWriter, r *http.Request) {
	var d model.Deadline
	if !h.decodeJSON(w, r, &d) {
		return
	}
	if err := h.validate.Struct(d); err != nil {
		http.Error(w, "sectionId and date are required", http.StatusBadRequest)
		return
	}
	if d.ID == "" {
		d.ID = store.NewID()
	}
	h.deadlines.Add(d)
	h.respondJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleUpdateDeadline(w http.ResponseWriter, r *http.Request) {
	var d model.Deadline
	if !h.decodeJSON(w, r, &d) {
		return
	}
	d.ID = chi.URLParam(r, "id")
	if err := h.validate.Struct(d); err != nil {
		http.Error(w, "sectionId and date are required", http.StatusBadRequest)
		return
	}
	h.deadlines.Update(d)
	h.respondJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDeleteDeadline(w http.ResponseWriter, r *http.Request) {
	h.deadlines.Remove(chi.URLParam(r, "id"))
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleListAssessments(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.assessments.List())
}

func (h *Handler) handleAddAssessment(w http.ResponseWriter, r *http.Request) {
	var a model.Assessment
	if !h.decodeJSON(w, r, &a) {
		return
	}
	if err := h.validate.Struct(a); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if a.ID == "" {
		a.ID = store.NewID()
	}
	h.assessments.Add(a)
	h.respondJSON(w, http.StatusCreated, a)
}

func (h *Handler) handleUpdateAssessment(w http.ResponseWriter, r *http.Request) {
	var a model.Assessment
	if !h.decodeJSON(w, r, &a) {
		return
	}
	a.ID = chi.URLParam(r, "id")
	if err := h.validate.Struct(a); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	h.assessments.Update(a)
	h.respondJSON(w, http.StatusOK, a)
}

func (h *Handler) handleDeleteAssessment(w http.ResponseWriter, r *http.Request) {
	h.assessments.Remove(chi.URLParam(r, "id"))
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.subjects.List())
}

func (h *Handler) handleAddSubject(w http.ResponseWriter, r *http.Request) {
	var s model.Subject
	if !h.decodeJSON(w, r, &s) {
		return
	}
	if err := h.validate.Struct(s); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if s.ID == "" {
		s.ID = store.NewID()
	}
	h.subjects.Add(s)
	h.respondJSON(w, http.StatusCreated, s)
}

func (h *Handler) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	var s model.Subject
	if !h.decodeJSON(w, r, &s) {
		return
	}
	s.ID = chi.URLParam(r, "id")
	if err := h.validate.Struct(s); err != nil {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	h.subjects.Update(s)
	h.respondJSON(w, http.StatusOK, s)
}

func (h *Handler) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	h.subjects.Remove(chi.URLParam(r, "id"))
	h.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
