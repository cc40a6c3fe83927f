package dto

import (
	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/pkg/resource"
)

// StudentDashboardResponse is the student landing page payload.
type StudentDashboardResponse struct {
	Student           models.Mahasiswa     `json:"student"`
	Advisor           *models.Pegawai      `json:"advisor"`
	Prodi             *models.Prodi        `json:"prodi"`
	Courses           []models.Course      `json:"courses"`
	TotalCredits      int                  `json:"total_credits"`
	AverageAttendance float64              `json:"average_attendance"`
	CurrentTerm       *models.AcademicTerm `json:"current_term"`
}

// StudentProfileResponse is the student profile with its program and
// department resolved.
type StudentProfileResponse struct {
	Student models.Mahasiswa `json:"student"`
	Prodi   *models.Prodi    `json:"prodi"`
	Jurusan *models.Jurusan  `json:"jurusan"`
}

// AdminDashboardResponse summarises the student list and the reference
// lists. Sources reports the load status of each list so a failed refresh
// is visible next to the last good totals.
type AdminDashboardResponse struct {
	TotalStudents    int                        `json:"total_students"`
	TotalProdi       int                        `json:"total_prodi"`
	TotalJurusan     int                        `json:"total_jurusan"`
	TotalDosen       int                        `json:"total_dosen"`
	NewStudents      int                        `json:"new_students"`
	StudentsByIntake []IntakeCount              `json:"students_by_intake"`
	Sources          map[string]resource.Status `json:"sources"`
}

// IntakeCount is the number of students per intake year.
type IntakeCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}
