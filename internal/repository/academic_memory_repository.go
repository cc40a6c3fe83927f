package repository

import (
	"context"
	"strconv"
	"sync"

	"github.com/noah-isme/simpadu-api/internal/models"
)

// AcademicMemoryRepository keeps academic data in process. Reads take a
// shared lock and writes an exclusive one; returned slices are copies.
type AcademicMemoryRepository struct {
	mu          sync.RWMutex
	courses     []models.Course
	enrollments []models.Enrollment
	attendance  []models.AttendanceRecord
	gradeSheets map[string]models.GradeSheet
	term        models.AcademicTerm
}

// NewAcademicMemoryRepository builds a repository holding seed.
func NewAcademicMemoryRepository(seed AcademicSeed) *AcademicMemoryRepository {
	sheets := make(map[string]models.GradeSheet, len(seed.GradeSheets))
	for k, v := range seed.GradeSheets {
		sheets[k] = v
	}
	return &AcademicMemoryRepository{
		courses:     append([]models.Course(nil), seed.Courses...),
		enrollments: append([]models.Enrollment(nil), seed.Enrollments...),
		attendance:  append([]models.AttendanceRecord(nil), seed.Attendance...),
		gradeSheets: sheets,
		term:        seed.CurrentTerm,
	}
}

// ListCourses returns every course.
func (r *AcademicMemoryRepository) ListCourses(_ context.Context) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Course(nil), r.courses...), nil
}

// FindCourse returns one course by id.
func (r *AcademicMemoryRepository) FindCourse(_ context.Context, id string) (*models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.ID == id {
			course := c
			return &course, nil
		}
	}
	return nil, ErrNotFound
}

// ListStudentCourses returns the courses studentID is enrolled in, in
// catalog order.
func (r *AcademicMemoryRepository) ListStudentCourses(_ context.Context, studentID string) ([]models.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	enrolled := make(map[string]struct{})
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			enrolled[e.CourseID] = struct{}{}
		}
	}
	courses := make([]models.Course, 0, len(enrolled))
	for _, c := range r.courses {
		if _, ok := enrolled[c.ID]; ok {
			courses = append(courses, c)
		}
	}
	return courses, nil
}

// ListEnrollments returns the enrollments of studentID.
func (r *AcademicMemoryRepository) ListEnrollments(_ context.Context, studentID string) ([]models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.Enrollment, 0)
	for _, e := range r.enrollments {
		if e.StudentID == studentID {
			result = append(result, e)
		}
	}
	return result, nil
}

// ListAttendance returns the records of studentID, restricted to courseID
// unless it is empty.
func (r *AcademicMemoryRepository) ListAttendance(_ context.Context, studentID, courseID string) ([]models.AttendanceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.AttendanceRecord, 0)
	for _, a := range r.attendance {
		if a.StudentID != studentID {
			continue
		}
		if courseID != "" && a.CourseID != courseID {
			continue
		}
		result = append(result, a)
	}
	return result, nil
}

// UpsertAttendance overwrites the status of the record with the same
// student, course and date, or appends a new record with the next sequential
// id. It reports whether a record was created.
func (r *AcademicMemoryRepository) UpsertAttendance(_ context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.attendance {
		existing := &r.attendance[i]
		if existing.StudentID == record.StudentID && existing.CourseID == record.CourseID && existing.Date.Equal(record.Date) {
			existing.Status = record.Status
			return *existing, false, nil
		}
	}
	record.ID = strconv.Itoa(len(r.attendance) + 1)
	r.attendance = append(r.attendance, record)
	return record, true, nil
}

// GradeSheet returns the grade sheet of studentID; students without grades
// get an empty sheet.
func (r *AcademicMemoryRepository) GradeSheet(_ context.Context, studentID string) (models.GradeSheet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sheet, ok := r.gradeSheets[studentID]
	if !ok {
		return models.GradeSheet{Terms: []models.GradeTerm{}}, nil
	}
	terms := make([]models.GradeTerm, len(sheet.Terms))
	for i, t := range sheet.Terms {
		terms[i] = models.GradeTerm{ID: t.ID, Name: t.Name, Entries: append([]models.GradeEntry(nil), t.Entries...)}
	}
	return models.GradeSheet{Terms: terms}, nil
}

// CurrentTerm returns the active academic term.
func (r *AcademicMemoryRepository) CurrentTerm(_ context.Context) (*models.AcademicTerm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.term.ID == "" {
		return nil, ErrNotFound
	}
	term := r.term
	return &term, nil
}
