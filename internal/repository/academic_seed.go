package repository

import "github.com/noah-isme/simpadu-api/internal/models"

// AcademicSeed is the initial content of an in-memory academic repository.
type AcademicSeed struct {
	Courses     []models.Course
	Enrollments []models.Enrollment
	Attendance  []models.AttendanceRecord
	GradeSheets map[string]models.GradeSheet
	CurrentTerm models.AcademicTerm
}

func strPtr(s string) *string { return &s }

// DefaultAcademicSeed returns the demo data set used when no database is
// configured. Student "4" is the demo mahasiswa account.
func DefaultAcademicSeed() AcademicSeed {
	return AcademicSeed{
		Courses: []models.Course{
			{ID: "1", Code: "CSC101", Name: "Pengantar Ilmu Komputer", Credits: 3, Semester: 1, Lecturer: "Dr. Hendro Wijaya, M.Kom"},
			{ID: "2", Code: "CSC201", Name: "Struktur Data dan Algoritma", Credits: 4, Semester: 3, Lecturer: "Dr. Maya Indira, M.Sc"},
			{ID: "3", Code: "CSC301", Name: "Pemrograman Web", Credits: 3, Semester: 5, Lecturer: "Agus Setiyo Budi Nugroho, S.Kom., M.Kom."},
			{ID: "4", Code: "CSC302", Name: "Kecerdasan Buatan", Credits: 3, Semester: 5, Lecturer: "Frista Rizky Rinandi, S.Kom., M.Kom."},
			{ID: "5", Code: "MGT101", Name: "Pengantar Manajemen", Credits: 3, Semester: 1, Lecturer: "Dr. Amalia Putri, M.M"},
			{ID: "6", Code: "MGT201", Name: "Pemasaran Digital", Credits: 3, Semester: 3, Lecturer: "Prof. Dimas Pratama, M.M"},
		},
		Enrollments: []models.Enrollment{
			{ID: "1", StudentID: "4", CourseID: "1", Status: models.EnrollmentApproved, Grade: strPtr("A"), AttendancePercentage: 95},
			{ID: "2", StudentID: "4", CourseID: "2", Status: models.EnrollmentApproved, Grade: strPtr("B+"), AttendancePercentage: 88},
			{ID: "3", StudentID: "4", CourseID: "3", Status: models.EnrollmentApproved, AttendancePercentage: 92},
			{ID: "4", StudentID: "4", CourseID: "4", Status: models.EnrollmentApproved, AttendancePercentage: 100},
			{ID: "5", StudentID: "3", CourseID: "5", Status: models.EnrollmentApproved, Grade: strPtr("A-"), AttendancePercentage: 90},
			{ID: "6", StudentID: "3", CourseID: "6", Status: models.EnrollmentApproved, AttendancePercentage: 85},
		},
		Attendance: []models.AttendanceRecord{
			{ID: "1", Date: models.MustDate("2023-09-01"), StudentID: "4", CourseID: "3", Status: models.AttendancePresent},
			{ID: "2", Date: models.MustDate("2023-09-08"), StudentID: "4", CourseID: "3", Status: models.AttendancePresent},
			{ID: "3", Date: models.MustDate("2023-09-15"), StudentID: "4", CourseID: "3", Status: models.AttendanceLate},
			{ID: "4", Date: models.MustDate("2023-09-22"), StudentID: "4", CourseID: "3", Status: models.AttendancePresent},
			{ID: "5", Date: models.MustDate("2023-09-01"), StudentID: "4", CourseID: "4", Status: models.AttendancePresent},
			{ID: "6", Date: models.MustDate("2023-09-08"), StudentID: "4", CourseID: "4", Status: models.AttendancePresent},
		},
		GradeSheets: map[string]models.GradeSheet{
			"4": {Terms: []models.GradeTerm{
				{ID: "1", Name: "Semester 1 (Ganjil 2023/2024)", Entries: []models.GradeEntry{
					{CourseCode: "CSC101", CourseName: "Pengantar Ilmu Komputer", Credits: 3, Grade: "A"},
					{CourseCode: "MAT101", CourseName: "Kalkulus I", Credits: 3, Grade: "A-"},
					{CourseCode: "ENG101", CourseName: "Bahasa Inggris I", Credits: 2, Grade: "B+"},
					{CourseCode: "PHY101", CourseName: "Fisika Dasar", Credits: 3, Grade: "B"},
				}},
				{ID: "2", Name: "Semester 2 (Genap 2023/2024)", Entries: []models.GradeEntry{
					{CourseCode: "CSC102", CourseName: "Algoritma dan Pemrograman", Credits: 4, Grade: "A"},
					{CourseCode: "MAT102", CourseName: "Kalkulus II", Credits: 3, Grade: "B+"},
					{CourseCode: "ENG102", CourseName: "Bahasa Inggris II", Credits: 2, Grade: "A-"},
					{CourseCode: "CHE101", CourseName: "Kimia Dasar", Credits: 3, Grade: "B"},
				}},
				{ID: "3", Name: "Semester 3 (Ganjil 2024/2025)", Entries: []models.GradeEntry{
					{CourseCode: "CSC201", CourseName: "Struktur Data", Credits: 4, Grade: "A-"},
					{CourseCode: "CSC202", CourseName: "Sistem Digital", Credits: 3, Grade: "B+"},
					{CourseCode: "MAT201", CourseName: "Matematika Diskrit", Credits: 3, Grade: "A"},
					{CourseCode: "STA201", CourseName: "Probabilitas dan Statistika", Credits: 3, Grade: "B"},
				}},
				{ID: "4", Name: "Semester 4 (Genap 2024/2025)", Entries: []models.GradeEntry{
					{CourseCode: "CSC203", CourseName: "Arsitektur Komputer", Credits: 3, Grade: "B+"},
					{CourseCode: "CSC204", CourseName: "Basis Data", Credits: 4, Grade: "A"},
					{CourseCode: "CSC205", CourseName: "Pemrograman Berorientasi Objek", Credits: 4, Grade: "A-"},
					{CourseCode: "MAT202", CourseName: "Aljabar Linear", Credits: 3, Grade: "B"},
				}},
			}},
		},
		CurrentTerm: models.AcademicTerm{
			ID:        "1",
			Name:      "Semester Ganjil 2024/2025",
			StartDate: models.MustDate("2023-09-01"),
			EndDate:   models.MustDate("2024-01-31"),
			IsActive:  true,
		},
	}
}
