package grade

// Section is one markable unit: an NEA section or a mock-exam paper section.
type Section struct {
	ID       string
	Title    string
	MaxMarks int
}

// NEASections are the six coursework sections A-F. Max marks total 100.
var NEASections = []Section{
	{ID: "section-a", Title: "A: Identifying and investigating design possibilities", MaxMarks: 10},
	{ID: "section-b", Title: "B: Producing a design brief and specification", MaxMarks: 10},
	{ID: "section-c", Title: "C: Generating design ideas", MaxMarks: 20},
	{ID: "section-d", Title: "D: Developing design ideas", MaxMarks: 20},
	{ID: "section-e", Title: "E: Realising design ideas", MaxMarks: 20},
	{ID: "section-f", Title: "F: Analysing and evaluating", MaxMarks: 20},
}

// MockPaper1Sections and MockPaper2Sections are the three sections of
// each mock-exam paper. Max marks total 100 per paper.
var MockPaper1Sections = []Section{
	{ID: "paper1-section-a", Title: "Paper 1 Section A", MaxMarks: 20},
	{ID: "paper1-section-b", Title: "Paper 1 Section B", MaxMarks: 30},
	{ID: "paper1-section-c", Title: "Paper 1 Section C", MaxMarks: 50},
}

var MockPaper2Sections = []Section{
	{ID: "paper2-section-a", Title: "Paper 2 Section A", MaxMarks: 20},
	{ID: "paper2-section-b", Title: "Paper 2 Section B", MaxMarks: 30},
	{ID: "paper2-section-c", Title: "Paper 2 Section C", MaxMarks: 50},
}

var sectionsByID = func() map[string]Section {
	m := make(map[string]Section)
	for _, group := range [][]Section{NEASections, MockPaper1Sections, MockPaper2Sections} {
		for _, s := range group {
			m[s.ID] = s
		}
	}
	return m
}()

// LookupSection returns the catalog entry for a section ID.
func LookupSection(id string) (Section, bool) {
	s, ok := sectionsByID[id]
	return s, ok
}

// GroupContains reports whether a section ID belongs to the given group.
func GroupContains(sections []Section, id string) bool {
	for _, s := range sections {
		if s.ID == id {
			return true
		}
	}
	return false
}

// MaxMarks returns the maximum mark for a section, or 0 for an unknown ID.
func MaxMarks(sectionID string) int {
	return sectionsByID[sectionID].MaxMarks
}

// SectionIDs returns the IDs of the given sections in order.
func SectionIDs(sections []Section) []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}

// GroupMax returns the summed maximum marks of the given sections.
func GroupMax(sections []Section) int {
	total := 0
	for _, s := range sections {
		total += s.MaxMarks
	}
	return total
}

// ClampMark clamps a raw mark into [0, MaxMarks(sectionID)]. Marks for
// unknown sections are only clamped below at zero.
func ClampMark(sectionID string, mark int) int {
	if mark < 0 {
		return 0
	}
	if s, ok := sectionsByID[sectionID]; ok && mark > s.MaxMarks {
		return s.MaxMarks
	}
	return mark
}
