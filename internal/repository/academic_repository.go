package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/simpadu-api/internal/models"
)

// AcademicRepository persists academic data in PostgreSQL.
type AcademicRepository struct {
	db *sqlx.DB
}

// NewAcademicRepository constructs the repository.
func NewAcademicRepository(db *sqlx.DB) *AcademicRepository {
	return &AcademicRepository{db: db}
}

const courseColumns = `id::text AS id, code, name, credits, semester, lecturer`

// ListCourses returns every course ordered by code.
func (r *AcademicRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY code`
	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindCourse returns one course by id.
func (r *AcademicRepository) FindCourse(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id::text = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// ListStudentCourses returns the courses studentID is enrolled in.
func (r *AcademicRepository) ListStudentCourses(ctx context.Context, studentID string) ([]models.Course, error) {
	const query = `SELECT c.id::text AS id, c.code, c.name, c.credits, c.semester, c.lecturer
FROM courses c
JOIN enrollments e ON e.course_id = c.id
WHERE e.student_id = $1
ORDER BY c.id`
	courses := make([]models.Course, 0)
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list student courses: %w", err)
	}
	return courses, nil
}

// ListEnrollments returns the enrollments of studentID.
func (r *AcademicRepository) ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id::text AS id, student_id, course_id::text AS course_id, status, grade, attendance_percentage
FROM enrollments WHERE student_id = $1 ORDER BY id`
	enrollments := make([]models.Enrollment, 0)
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// ListAttendance returns the records of studentID, restricted to courseID
// unless it is empty.
func (r *AcademicRepository) ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceRecord, error) {
	query := `SELECT id::text AS id, date, student_id, course_id::text AS course_id, status
FROM attendance_records WHERE student_id = $1`
	args := []interface{}{studentID}
	if courseID != "" {
		query += ` AND course_id::text = $2`
		args = append(args, courseID)
	}
	query += ` ORDER BY date, id`

	records := make([]models.AttendanceRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// UpsertAttendance inserts the record or overwrites the status of the record
// sharing its student, course and date. It reports whether a row was created.
func (r *AcademicRepository) UpsertAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error) {
	const query = `INSERT INTO attendance_records (student_id, course_id, date, status)
VALUES ($1, $2, $3, $4)
ON CONFLICT (student_id, course_id, date) DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
RETURNING id::text AS id, (xmax = 0) AS inserted`
	var row struct {
		ID       string `db:"id"`
		Inserted bool   `db:"inserted"`
	}
	if err := r.db.GetContext(ctx, &row, query, record.StudentID, record.CourseID, record.Date, record.Status); err != nil {
		return models.AttendanceRecord{}, false, fmt.Errorf("upsert attendance: %w", err)
	}
	record.ID = row.ID
	return record, row.Inserted, nil
}

type gradeRow struct {
	TermID   string `db:"term_id"`
	TermName string `db:"term_name"`
	models.GradeEntry
}

// GradeSheet returns the grade sheet of studentID with terms in academic
// order.
func (r *AcademicRepository) GradeSheet(ctx context.Context, studentID string) (models.GradeSheet, error) {
	const query = `SELECT t.id AS term_id, t.name AS term_name, g.course_code, g.course_name, g.credits, COALESCE(g.grade, '') AS grade
FROM grade_entries g
JOIN grade_terms t ON t.id = g.term_id
WHERE g.student_id = $1
ORDER BY t.position, g.course_code`
	var rows []gradeRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return models.GradeSheet{}, fmt.Errorf("load grade sheet: %w", err)
	}

	sheet := models.GradeSheet{Terms: []models.GradeTerm{}}
	for _, row := range rows {
		n := len(sheet.Terms)
		if n == 0 || sheet.Terms[n-1].ID != row.TermID {
			sheet.Terms = append(sheet.Terms, models.GradeTerm{ID: row.TermID, Name: row.TermName})
			n++
		}
		sheet.Terms[n-1].Entries = append(sheet.Terms[n-1].Entries, row.GradeEntry)
	}
	return sheet, nil
}

// CurrentTerm returns the active academic term.
func (r *AcademicRepository) CurrentTerm(ctx context.Context) (*models.AcademicTerm, error) {
	const query = `SELECT id, name, start_date, end_date, is_active FROM academic_terms WHERE is_active ORDER BY start_date DESC LIMIT 1`
	var term models.AcademicTerm
	if err := r.db.GetContext(ctx, &term, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("current term: %w", err)
	}
	return &term, nil
}
