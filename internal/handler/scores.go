package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/neatrack/internal/grade"
	"github.com/pavelanni/neatrack/internal/store"
)

// scoreBook resolves the {component} URL segment.
func (h *Handler) scoreBook(component string) *store.ScoreBook {
	switch component {
	case "nea":
		return h.neaScores
	case "mock":
		return h.mockScores
	default:
		return nil
	}
}

// componentHasSection reports whether a section ID belongs to the named
// component. A mock paper section must not land in the NEA book.
func componentHasSection(component, sectionID string) bool {
	switch component {
	case "nea":
		return grade.GroupContains(grade.NEASections, sectionID)
	case "mock":
		return grade.GroupContains(grade.MockPaper1Sections, sectionID) ||
			grade.GroupContains(grade.MockPaper2Sections, sectionID)
	}
	return false
}

func (h *Handler) handleGetScores(w http.ResponseWriter, r *http.Request) {
	book := h.scoreBook(chi.URLParam(r, "component"))
	if book == nil {
		http.Error(w, "unknown component", http.StatusNotFound)
		return
	}
	h.respondJSON(w, http.StatusOK, book.Scores(chi.URLParam(r, "studentID")))
}

// handleUpdateScore stores one mark. The stored value is clamped into
// the section's range and echoed back so the UI shows what was kept.
func (h *Handler) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	book := h.scoreBook(chi.URLParam(r, "component"))
	if book == nil {
		http.Error(w, "unknown component", http.StatusNotFound)
		return
	}
	sectionID := chi.URLParam(r, "sectionID")
	if !componentHasSection(chi.URLParam(r, "component"), sectionID) {
		http.Error(w, "unknown section", http.StatusBadRequest)
		return
	}

	var req struct {
		Mark int `json:"mark"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	stored := book.UpdateScore(chi.URLParam(r, "studentID"), sectionID, req.Mark)
	h.respondJSON(w, http.StatusOK, map[string]int{"mark": stored})
}

// handleUpdateScoreRecord updates the free-text parts of a record.
func (h *Handler) handleUpdateScoreRecord(w http.ResponseWriter, r *http.Request) {
	book := h.scoreBook(chi.URLParam(r, "component"))
	if book == nil {
		http.Error(w, "unknown component", http.StatusNotFound)
		return
	}

	var req struct {
		Notes         *string `json:"notes"`
		PortfolioLink *string `json:"portfolioLink"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}

	studentID := chi.URLParam(r, "studentID")
	if req.Notes != nil {
		book.SetNotes(studentID, *req.Notes)
	}
	if req.PortfolioLink != nil {
		book.SetPortfolioLink(studentID, *req.PortfolioLink)
	}
	h.respondJSON(w, http.StatusOK, book.Scores(studentID))
}

// StudentSummary is the per-student grade breakdown every dashboard
// view is built from.
type StudentSummary struct {
	StudentID string `json:"studentId"`

	NEATotal int         `json:"neaTotal"`
	NEAMax   int         `json:"neaMax"`
	NEAGrade grade.Grade `json:"neaGrade"`

	Paper1Total int         `json:"paper1Total"`
	Paper2Total int         `json:"paper2Total"`
	MockTotal   int         `json:"mockTotal"`
	MockMax     int         `json:"mockMax"`
	MockGrade   grade.Grade `json:"mockGrade"`

	OverallGrade grade.Grade `json:"overallGrade"`

	// SectionsComplete counts NEA sections with a recorded mark;
	// Progress is that as a rounded percentage.
	SectionsComplete int `json:"sectionsComplete"`
	Progress         int `json:"progress"`
}

func (h *Handler) handleStudentSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.students.FindByID(id); !ok {
		http.Error(w, "student not found", http.StatusNotFound)
		return
	}
	h.respondJSON(w, http.StatusOK, h.summarize(id))
}

func (h *Handler) summarize(studentID string) StudentSummary {
	neaMarks := h.neaScores.Scores(studentID).Marks
	mockMarks := h.mockScores.Scores(studentID).Marks

	neaIDs := grade.SectionIDs(grade.NEASections)
	neaMax := grade.GroupMax(grade.NEASections)
	neaTotal := grade.TotalForGroup(neaMarks, neaIDs)

	paper1 := grade.TotalForGroup(mockMarks, grade.SectionIDs(grade.MockPaper1Sections))
	paper2 := grade.TotalForGroup(mockMarks, grade.SectionIDs(grade.MockPaper2Sections))
	mockMax := grade.GroupMax(grade.MockPaper1Sections) + grade.GroupMax(grade.MockPaper2Sections)
	mockTotal := paper1 + paper2

	complete := 0
	for _, sectionID := range neaIDs {
		if _, ok := neaMarks[sectionID]; ok {
			complete++
		}
	}

	return StudentSummary{
		StudentID:        studentID,
		NEATotal:         neaTotal,
		NEAMax:           neaMax,
		NEAGrade:         grade.ForMarks(neaTotal, neaMax),
		Paper1Total:      paper1,
		Paper2Total:      paper2,
		MockTotal:        mockTotal,
		MockMax:          mockMax,
		MockGrade:        grade.ForMarks(mockTotal, mockMax),
		OverallGrade:     grade.OverallGrade(neaTotal, mockTotal, neaMax, mockMax),
		SectionsComplete: complete,
		Progress:         grade.Progress(complete, len(neaIDs)),
	}
}
