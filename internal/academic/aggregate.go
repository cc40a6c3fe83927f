// Package academic computes derived academic figures such as GPA, credit
// totals and attendance percentages. Every function is pure.
package academic

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/noah-isme/simpadu-api/internal/models"
)

var gradePoints = map[string]float64{
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"E":  0,
}

// GradePoint maps a letter grade to the 4.0 scale. Unknown letters are 0.
func GradePoint(letter string) float64 {
	return gradePoints[letter]
}

// GPA is a grade point average that may be undefined when no graded credits
// exist. It renders with two decimals, or "-" when undefined.
type GPA struct {
	Value   float64
	Defined bool
}

func (g GPA) String() string {
	if !g.Defined {
		return "-"
	}
	return fmt.Sprintf("%.2f", g.Value)
}

// MarshalJSON renders the GPA as its display string.
func (g GPA) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.String())
}

func weightedGPA(entries ...[]models.GradeEntry) GPA {
	var points float64
	var credits int
	for _, list := range entries {
		for _, e := range list {
			if e.Grade == "" {
				continue
			}
			points += GradePoint(e.Grade) * float64(e.Credits)
			credits += e.Credits
		}
	}
	if credits == 0 {
		return GPA{}
	}
	return GPA{Value: points / float64(credits), Defined: true}
}

// SemesterGPA is the credit weighted average over graded entries of one term.
func SemesterGPA(sheet models.GradeSheet, termID string) GPA {
	term, ok := sheet.Term(termID)
	if !ok {
		return GPA{}
	}
	return weightedGPA(term.Entries)
}

// CumulativeGPA is the credit weighted average over every graded entry.
func CumulativeGPA(sheet models.GradeSheet) GPA {
	lists := make([][]models.GradeEntry, len(sheet.Terms))
	for i, t := range sheet.Terms {
		lists[i] = t.Entries
	}
	return weightedGPA(lists...)
}

// TotalCreditsCompleted sums the credits of every graded entry.
func TotalCreditsCompleted(sheet models.GradeSheet) int {
	total := 0
	for _, t := range sheet.Terms {
		for _, e := range t.Entries {
			if e.Grade != "" {
				total += e.Credits
			}
		}
	}
	return total
}

// Predicate is the graduation predicate for a cumulative GPA. An undefined
// GPA yields the lowest predicate.
func Predicate(gpa GPA) string {
	switch {
	case !gpa.Defined:
		return "Cukup"
	case gpa.Value >= 3.5:
		return "CumLaude"
	case gpa.Value >= 3.0:
		return "Sangat Memuaskan"
	case gpa.Value >= 2.5:
		return "Memuaskan"
	default:
		return "Cukup"
	}
}

// AttendancePercentage is the rounded share of present or excused records for
// one student and course. It is 0 when there are no records.
func AttendancePercentage(records []models.AttendanceRecord, studentID, courseID string) int {
	total, attended := 0, 0
	for _, r := range records {
		if r.StudentID != studentID || r.CourseID != courseID {
			continue
		}
		total++
		if r.Status == models.AttendancePresent || r.Status == models.AttendanceExcused {
			attended++
		}
	}
	return percentage(attended, total)
}

// AttendanceStats counts records per status.
type AttendanceStats struct {
	TotalSessions     int `json:"total_sessions"`
	Present           int `json:"present"`
	Absent            int `json:"absent"`
	Late              int `json:"late"`
	Excused           int `json:"excused"`
	Sick              int `json:"sick"`
	OverallPercentage int `json:"overall_percentage"`
}

// AttendanceStatistics summarises records. The overall percentage counts
// present, excused and sick sessions as attended.
func AttendanceStatistics(records []models.AttendanceRecord) AttendanceStats {
	var s AttendanceStats
	for _, r := range records {
		s.TotalSessions++
		switch r.Status {
		case models.AttendancePresent:
			s.Present++
		case models.AttendanceAbsent:
			s.Absent++
		case models.AttendanceLate:
			s.Late++
		case models.AttendanceExcused:
			s.Excused++
		case models.AttendanceSick:
			s.Sick++
		}
	}
	s.OverallPercentage = percentage(s.Present+s.Excused+s.Sick, s.TotalSessions)
	return s
}

// TotalCredits sums the credits of the given courses.
func TotalCredits(courses []models.Course) int {
	total := 0
	for _, c := range courses {
		total += c.Credits
	}
	return total
}

// AverageAttendance is the mean of the enrollments' attendance percentages,
// or 0 when there are none.
func AverageAttendance(enrollments []models.Enrollment) float64 {
	if len(enrollments) == 0 {
		return 0
	}
	sum := 0
	for _, e := range enrollments {
		sum += e.AttendancePercentage
	}
	return float64(sum) / float64(len(enrollments))
}

func percentage(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
