// Package grade converts raw marks into 9-1 grades and aggregates marks
// across section groups. Everything here is a pure function over static
// tables; malformed input degrades to zero rather than failing.
package grade

import "math"

// Grade is a 9-1 qualification grade, "U" for ungraded.
type Grade string

// boundary is the minimum percentage required for a grade.
type boundary struct {
	Grade  Grade
	MinPct float64
}

// boundaries is ordered highest grade first so the first match wins.
// The same table applies to NEA, mock-exam, and combined grading.
var boundaries = []boundary{
	{"9", 87},
	{"8", 80},
	{"7", 75},
	{"6", 67},
	{"5", 58},
	{"4", 50},
	{"3", 37},
	{"2", 24},
	{"1", 11},
	{"U", 0},
}

// ForPercent maps a percentage to its grade.
func ForPercent(pct float64) Grade {
	for _, b := range boundaries {
		if pct >= b.MinPct {
			return b.Grade
		}
	}
	return "U"
}

// ForMarks grades raw marks out of maxMarks. A non-positive maxMarks
// grades as U rather than dividing by zero.
func ForMarks(marks, maxMarks int) Grade {
	if maxMarks <= 0 {
		return "U"
	}
	return ForPercent(float64(marks) / float64(maxMarks) * 100)
}

// TotalForGroup sums a score record's marks over the given section IDs.
// Missing sections count as zero.
func TotalForGroup(marks map[string]int, sectionIDs []string) int {
	total := 0
	for _, id := range sectionIDs {
		total += marks[id]
	}
	return total
}

// OverallGrade blends the NEA and mock-exam components 50/50 and grades
// the result. Both components are normalized to percentages before
// blending, so the maxima need not be equal.
func OverallGrade(neaTotal, mockTotal, neaMax, mockMax int) Grade {
	return ForPercent(CombinedPercent(neaTotal, mockTotal, neaMax, mockMax))
}

// CombinedPercent is the 50/50 weighted percentage across both components.
// A component with non-positive max contributes zero.
func CombinedPercent(neaTotal, mockTotal, neaMax, mockMax int) float64 {
	return percent(neaTotal, neaMax)*0.5 + percent(mockTotal, mockMax)*0.5
}

func percent(marks, max int) float64 {
	if max <= 0 {
		return 0
	}
	return float64(marks) / float64(max) * 100
}

// Progress is a completion percentage rounded to the nearest integer,
// zero when there is nothing to complete.
func Progress(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
