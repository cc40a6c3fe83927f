package dto

import (
	"github.com/noah-isme/simpadu-api/internal/academic"
	"github.com/noah-isme/simpadu-api/internal/models"
)

// TermOption is a selectable semester.
type TermOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GradeReportResponse is the KHS for one semester.
type GradeReportResponse struct {
	Student       models.Identity     `json:"student"`
	NIM           string              `json:"nim"`
	Terms         []TermOption        `json:"terms"`
	Term          TermOption          `json:"term"`
	Entries       []models.GradeEntry `json:"entries"`
	TermCredits   int                 `json:"term_credits"`
	SemesterGPA   academic.GPA        `json:"ips"`
	CumulativeGPA academic.GPA        `json:"ipk"`
	TotalCredits  int                 `json:"total_credits"`
	Predicate     string              `json:"predicate"`
}
