package dto

import (
	"github.com/noah-isme/simpadu-api/internal/academic"
	"github.com/noah-isme/simpadu-api/internal/models"
)

// CourseAttendance is the attendance history of one enrolled course.
type CourseAttendance struct {
	Course     models.Course             `json:"course"`
	Records    []models.AttendanceRecord `json:"records"`
	Percentage int                       `json:"percentage"`
}

// AttendanceOverviewResponse lists attendance per enrolled course along with
// overall statistics.
type AttendanceOverviewResponse struct {
	Courses    []CourseAttendance       `json:"courses"`
	Statistics academic.AttendanceStats `json:"statistics"`
}

// MarkAttendanceResponse reports the stored record and whether it replaced
// an earlier mark for the same day.
type MarkAttendanceResponse struct {
	Record     models.AttendanceRecord `json:"record"`
	Created    bool                    `json:"created"`
	Percentage int                     `json:"percentage"`
}
