package models

// Course is catalog reference data for the academic views.
type Course struct {
	ID       string `db:"id" json:"id"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Credits  int    `db:"credits" json:"credits"`
	Semester int    `db:"semester" json:"semester"`
	Lecturer string `db:"lecturer" json:"lecturer"`
}

// EnrollmentStatus is the registrar decision on an enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID                   string           `db:"id" json:"id"`
	StudentID            string           `db:"student_id" json:"student_id"`
	CourseID             string           `db:"course_id" json:"course_id"`
	Status               EnrollmentStatus `db:"status" json:"status"`
	Grade                *string          `db:"grade" json:"grade,omitempty"`
	AttendancePercentage int              `db:"attendance_percentage" json:"attendance_percentage"`
}

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
	AttendanceSick    AttendanceStatus = "sick"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused, AttendanceSick:
		return true
	default:
		return false
	}
}

// Label is the Indonesian label shown to students.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Hadir"
	case AttendanceAbsent:
		return "Tidak Hadir"
	case AttendanceLate:
		return "Terlambat"
	case AttendanceExcused:
		return "Izin"
	case AttendanceSick:
		return "Sakit"
	default:
		return string(s)
	}
}

// AttendanceRecord is one attendance mark. There is at most one record per
// student, course and date.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	Date      Date             `db:"date" json:"date"`
	StudentID string           `db:"student_id" json:"student_id"`
	CourseID  string           `db:"course_id" json:"course_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
}

// MarkAttendanceRequest is the payload for recording today's attendance.
// Students may only self-report these three statuses.
type MarkAttendanceRequest struct {
	CourseID string           `json:"course_id" form:"course_id" validate:"required"`
	Status   AttendanceStatus `json:"status" form:"status" validate:"required,oneof=present excused sick"`
}

// AcademicTerm describes a semester window.
type AcademicTerm struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	StartDate Date   `db:"start_date" json:"start_date"`
	EndDate   Date   `db:"end_date" json:"end_date"`
	IsActive  bool   `db:"is_active" json:"is_active"`
}

// GradeEntry is one graded course inside a term of the grade sheet. An empty
// Grade means the course has not been graded yet.
type GradeEntry struct {
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	Credits    int    `db:"credits" json:"credits"`
	Grade      string `db:"grade" json:"grade"`
}

// GradeTerm groups the entries of one semester.
type GradeTerm struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Entries []GradeEntry `json:"entries"`
}

// GradeSheet is the ordered list of terms for one student.
type GradeSheet struct {
	Terms []GradeTerm `json:"terms"`
}

// Term returns the term with id, if present.
func (s GradeSheet) Term(id string) (GradeTerm, bool) {
	for _, t := range s.Terms {
		if t.ID == id {
			return t, true
		}
	}
	return GradeTerm{}, false
}
