package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/simpadu-api/internal/academic"
	"github.com/noah-isme/simpadu-api/internal/dto"
	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/internal/repository"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/export"
)

// AcademicRepository is the academic storage consumed by the student views.
type AcademicRepository interface {
	FindCourse(ctx context.Context, id string) (*models.Course, error)
	ListStudentCourses(ctx context.Context, studentID string) ([]models.Course, error)
	ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error)
	ListAttendance(ctx context.Context, studentID, courseID string) ([]models.AttendanceRecord, error)
	UpsertAttendance(ctx context.Context, record models.AttendanceRecord) (models.AttendanceRecord, bool, error)
	GradeSheet(ctx context.Context, studentID string) (models.GradeSheet, error)
	CurrentTerm(ctx context.Context) (*models.AcademicTerm, error)
}

type mahasiswaGetter interface {
	GetMahasiswa(ctx context.Context, nim string) (*models.Mahasiswa, error)
}

// PortalService builds the student views. Academic data is keyed by the
// identity id; remote student data by the NIM derived from the email.
type PortalService struct {
	repo      AcademicRepository
	directory mahasiswaGetter
	refs      *ReferenceService
	validator *validator.Validate
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewPortalService constructs a PortalService.
func NewPortalService(repo AcademicRepository, directory mahasiswaGetter, refs *ReferenceService, validate *validator.Validate, logger *zap.Logger) *PortalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PortalService{
		repo:      repo,
		directory: directory,
		refs:      refs,
		validator: validate,
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Dashboard joins the student record, advisor, program and enrolled courses.
// Every source must load; a single failure fails the whole view.
func (s *PortalService) Dashboard(ctx context.Context, identity models.Identity) (*dto.StudentDashboardResponse, error) {
	studentID := identity.ID.String()
	var (
		student     *models.Mahasiswa
		dosen       []models.Pegawai
		prodi       []models.Prodi
		courses     []models.Course
		enrollments []models.Enrollment
		term        *models.AcademicTerm
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		student, err = s.directory.GetMahasiswa(gctx, identity.NIM())
		return err
	})
	g.Go(func() (err error) {
		dosen, _, err = s.refs.Dosen(gctx)
		return err
	})
	g.Go(func() (err error) {
		prodi, _, err = s.refs.Prodi(gctx)
		return err
	})
	g.Go(func() (err error) {
		courses, err = s.repo.ListStudentCourses(gctx, studentID)
		return repoError(err, "gagal memuat mata kuliah")
	})
	g.Go(func() (err error) {
		enrollments, err = s.repo.ListEnrollments(gctx, studentID)
		return repoError(err, "gagal memuat data perkuliahan")
	})
	g.Go(func() error {
		t, err := s.repo.CurrentTerm(gctx)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		term = t
		return repoError(err, "gagal memuat semester aktif")
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("student dashboard", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return &dto.StudentDashboardResponse{
		Student:           *student,
		Advisor:           findAdvisor(dosen, student.IDPegawai),
		Prodi:             findProdi(prodi, student.IDProdi),
		Courses:           courses,
		TotalCredits:      academic.TotalCredits(courses),
		AverageAttendance: academic.AverageAttendance(enrollments),
		CurrentTerm:       term,
	}, nil
}

// Profile joins the student record with its program and department.
func (s *PortalService) Profile(ctx context.Context, identity models.Identity) (*dto.StudentProfileResponse, error) {
	var (
		student *models.Mahasiswa
		prodi   []models.Prodi
		jurusan []models.Jurusan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		student, err = s.directory.GetMahasiswa(gctx, identity.NIM())
		return err
	})
	g.Go(func() (err error) {
		prodi, _, err = s.refs.Prodi(gctx)
		return err
	})
	g.Go(func() (err error) {
		jurusan, _, err = s.refs.Jurusan(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &dto.StudentProfileResponse{Student: *student, Prodi: findProdi(prodi, student.IDProdi)}
	if resp.Prodi != nil {
		for i := range jurusan {
			if jurusan[i].IDJurusan == resp.Prodi.IDJurusan {
				resp.Jurusan = &jurusan[i]
				break
			}
		}
	}
	return resp, nil
}

func findAdvisor(dosen []models.Pegawai, id *string) *models.Pegawai {
	if id == nil || *id == "" {
		return nil
	}
	for i := range dosen {
		if dosen[i].IDPegawai == *id {
			return &dosen[i]
		}
	}
	return nil
}

func findProdi(prodi []models.Prodi, id *models.FlexInt) *models.Prodi {
	if id == nil {
		return nil
	}
	for i := range prodi {
		if prodi[i].IDProdi == *id {
			return &prodi[i]
		}
	}
	return nil
}

// Courses returns the remote catalog filtered by name or code, ignoring
// case. The boolean reports whether the catalog came from cache.
func (s *PortalService) Courses(ctx context.Context, search string) ([]models.MataKuliah, bool, error) {
	courses, hit, err := s.refs.MataKuliah(ctx)
	if err != nil {
		return nil, false, err
	}
	return FilterMataKuliah(courses, search), hit, nil
}

// FilterMataKuliah keeps courses whose name or code contains query.
func FilterMataKuliah(courses []models.MataKuliah, query string) []models.MataKuliah {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return courses
	}
	matched := make([]models.MataKuliah, 0, len(courses))
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.NamaMatakuliah), query) ||
			strings.Contains(strings.ToLower(c.KodeMatakuliah), query) {
			matched = append(matched, c)
		}
	}
	return matched
}

// Attendance lists the records and percentage of every enrolled course plus
// statistics over all of the student's records.
func (s *PortalService) Attendance(ctx context.Context, identity models.Identity) (*dto.AttendanceOverviewResponse, error) {
	studentID := identity.ID.String()
	courses, err := s.repo.ListStudentCourses(ctx, studentID)
	if err != nil {
		return nil, repoError(err, "gagal memuat mata kuliah")
	}
	records, err := s.repo.ListAttendance(ctx, studentID, "")
	if err != nil {
		return nil, repoError(err, "gagal memuat presensi")
	}

	byCourse := make(map[string][]models.AttendanceRecord, len(courses))
	for _, r := range records {
		byCourse[r.CourseID] = append(byCourse[r.CourseID], r)
	}
	resp := &dto.AttendanceOverviewResponse{
		Courses:    make([]dto.CourseAttendance, 0, len(courses)),
		Statistics: academic.AttendanceStatistics(records),
	}
	for _, c := range courses {
		list := byCourse[c.ID]
		if list == nil {
			list = []models.AttendanceRecord{}
		}
		resp.Courses = append(resp.Courses, dto.CourseAttendance{
			Course:     c,
			Records:    list,
			Percentage: academic.AttendancePercentage(records, studentID, c.ID),
		})
	}
	return resp, nil
}

// MarkAttendance records today's status for an enrolled course. Marking the
// same course twice on one day overwrites the earlier status.
func (s *PortalService) MarkAttendance(ctx context.Context, identity models.Identity, req models.MarkAttendanceRequest) (*dto.MarkAttendanceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Status presensi harus hadir, izin atau sakit.")
	}
	studentID := identity.ID.String()

	if _, err := s.repo.FindCourse(ctx, req.CourseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mata kuliah tidak ditemukan.")
		}
		return nil, repoError(err, "gagal memuat mata kuliah")
	}
	enrollments, err := s.repo.ListEnrollments(ctx, studentID)
	if err != nil {
		return nil, repoError(err, "gagal memuat data perkuliahan")
	}
	if !enrolledIn(enrollments, req.CourseID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Anda tidak terdaftar pada mata kuliah ini.")
	}

	// Attendance days are UTC calendar days.
	record, created, err := s.repo.UpsertAttendance(ctx, models.AttendanceRecord{
		Date:      models.NewDate(s.now().UTC()),
		StudentID: studentID,
		CourseID:  req.CourseID,
		Status:    req.Status,
	})
	if err != nil {
		return nil, repoError(err, "gagal menyimpan presensi")
	}
	records, err := s.repo.ListAttendance(ctx, studentID, req.CourseID)
	if err != nil {
		return nil, repoError(err, "gagal memuat presensi")
	}

	s.logger.Info("attendance marked",
		zap.String("student_id", studentID),
		zap.String("course_id", req.CourseID),
		zap.String("status", string(req.Status)),
		zap.Bool("created", created))
	return &dto.MarkAttendanceResponse{
		Record:     record,
		Created:    created,
		Percentage: academic.AttendancePercentage(records, studentID, req.CourseID),
	}, nil
}

func enrolledIn(enrollments []models.Enrollment, courseID string) bool {
	for _, e := range enrollments {
		if e.CourseID == courseID {
			return true
		}
	}
	return false
}

// GradeReport builds the KHS for semester, or for the first semester of the
// sheet when semester is empty.
func (s *PortalService) GradeReport(ctx context.Context, identity models.Identity, semester string) (*dto.GradeReportResponse, error) {
	sheet, err := s.repo.GradeSheet(ctx, identity.ID.String())
	if err != nil {
		return nil, repoError(err, "gagal memuat nilai")
	}

	resp := &dto.GradeReportResponse{
		Student:       identity,
		NIM:           identity.NIM(),
		Terms:         make([]dto.TermOption, 0, len(sheet.Terms)),
		Entries:       []models.GradeEntry{},
		CumulativeGPA: academic.CumulativeGPA(sheet),
		TotalCredits:  academic.TotalCreditsCompleted(sheet),
	}
	resp.Predicate = academic.Predicate(resp.CumulativeGPA)
	for _, t := range sheet.Terms {
		resp.Terms = append(resp.Terms, dto.TermOption{ID: t.ID, Name: t.Name})
	}

	if semester == "" {
		if len(sheet.Terms) == 0 {
			return resp, nil
		}
		semester = sheet.Terms[0].ID
	}
	term, ok := sheet.Term(semester)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "Semester tidak ditemukan.")
	}
	resp.Term = dto.TermOption{ID: term.ID, Name: term.Name}
	resp.Entries = term.Entries
	for _, e := range term.Entries {
		resp.TermCredits += e.Credits
	}
	resp.SemesterGPA = academic.SemesterGPA(sheet, term.ID)
	return resp, nil
}

var gradeReportColumns = []export.Column{
	{Key: "no", Title: "No", Width: 12},
	{Key: "code", Title: "Kode", Width: 28},
	{Key: "name", Title: "Mata Kuliah"},
	{Key: "credits", Title: "SKS", Width: 16},
	{Key: "grade", Title: "Nilai", Width: 18},
	{Key: "point", Title: "Bobot", Width: 18},
}

// GradeReportPDF renders the KHS of semester as a PDF and returns it with
// its download file name.
func (s *PortalService) GradeReportPDF(ctx context.Context, identity models.Identity, semester string) ([]byte, string, error) {
	report, err := s.GradeReport(ctx, identity, semester)
	if err != nil {
		return nil, "", err
	}
	if report.Term.ID == "" {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "Belum ada data nilai.")
	}

	rows := make([]map[string]string, 0, len(report.Entries))
	for i, e := range report.Entries {
		grade, point := "-", "-"
		if e.Grade != "" {
			grade = e.Grade
			point = fmt.Sprintf("%.2f", academic.GradePoint(e.Grade))
		}
		rows = append(rows, map[string]string{
			"no":      strconv.Itoa(i + 1),
			"code":    e.CourseCode,
			"name":    e.CourseName,
			"credits": strconv.Itoa(e.Credits),
			"grade":   grade,
			"point":   point,
		})
	}

	content, err := s.pdf.Render(export.Report{
		Title:    "Kartu Hasil Studi",
		Subtitle: report.Term.Name,
		Header: []export.Field{
			{Label: "Nama", Value: identity.Name},
			{Label: "NIM", Value: report.NIM},
			{Label: "Semester", Value: report.Term.Name},
		},
		Data: export.Dataset{Columns: gradeReportColumns, Rows: rows},
		Summary: []export.Field{
			{Label: "SKS Semester", Value: strconv.Itoa(report.TermCredits)},
			{Label: "IP Semester", Value: report.SemesterGPA.String()},
			{Label: "IPK", Value: report.CumulativeGPA.String()},
			{Label: "Total SKS", Value: strconv.Itoa(report.TotalCredits)},
			{Label: "Predikat", Value: report.Predicate},
		},
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "gagal membuat file PDF")
	}
	return content, "KHS_" + export.SafeFilename(report.Term.Name) + ".pdf", nil
}

// repoError converts a repository failure into an internal error.
func repoError(err error, message string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, message)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
