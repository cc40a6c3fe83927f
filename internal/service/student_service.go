package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/simpadu-api/internal/dto"
	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/export"
	"github.com/noah-isme/simpadu-api/pkg/resource"
)

// StudentPageSize is the number of students shown per admin page.
const StudentPageSize = 25

type mahasiswaDirectory interface {
	ListMahasiswa(ctx context.Context) ([]models.Mahasiswa, error)
	GetMahasiswa(ctx context.Context, nim string) (*models.Mahasiswa, error)
	CreateMahasiswa(ctx context.Context, m models.Mahasiswa) (models.MutationResult, error)
	UpdateMahasiswa(ctx context.Context, nim string, m models.Mahasiswa) (models.MutationResult, error)
	DeleteMahasiswa(ctx context.Context, nim string) (models.MutationResult, error)
}

// StudentService backs the admin student screens. The full list is held in
// a resource and filtered in memory; it is reloaded after every successful
// mutation.
type StudentService struct {
	directory mahasiswaDirectory
	refs      *ReferenceService
	validator *validator.Validate
	csv       *export.CSVExporter
	list      *resource.Resource[[]models.Mahasiswa]
	maxAge    time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService. maxAge bounds how long the
// cached list is served; zero keeps it until the next mutation.
func NewStudentService(directory mahasiswaDirectory, refs *ReferenceService, validate *validator.Validate, maxAge time.Duration, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{
		directory: directory,
		refs:      refs,
		validator: validate,
		csv:       export.NewCSVExporter(),
		list:      resource.New[[]models.Mahasiswa](),
		maxAge:    maxAge,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *StudentService) all(ctx context.Context) ([]models.Mahasiswa, error) {
	return s.list.Get(ctx, s.maxAge, s.directory.ListMahasiswa)
}

// List returns one page of the students matching filter.Search.
func (s *StudentService) List(ctx context.Context, filter models.MahasiswaFilter) ([]models.Mahasiswa, *models.Pagination, error) {
	students, err := s.all(ctx)
	if err != nil {
		return nil, nil, err
	}
	size := filter.PageSize
	if size <= 0 {
		size = StudentPageSize
	}
	page, pagination := Paginate(FilterMahasiswa(students, filter.Search), filter.Page, size)
	return page, &pagination, nil
}

// FilterMahasiswa keeps students whose nama, nim or email contains query,
// ignoring case. An empty query keeps everyone.
func FilterMahasiswa(students []models.Mahasiswa, query string) []models.Mahasiswa {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return students
	}
	matched := make([]models.Mahasiswa, 0, len(students))
	for _, m := range students {
		if strings.Contains(strings.ToLower(m.Nama), query) ||
			strings.Contains(strings.ToLower(m.NIM), query) ||
			strings.Contains(strings.ToLower(m.Email), query) {
			matched = append(matched, m)
		}
	}
	return matched
}

// Paginate returns the requested page of items. Pages past the end are
// empty.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	pagination := models.NewPagination(page, size, len(items))
	start, end := pagination.Bounds()
	return items[start:end], pagination
}

// Get fetches one student directly from the portal host.
func (s *StudentService) Get(ctx context.Context, nim string) (*models.Mahasiswa, error) {
	return s.directory.GetMahasiswa(ctx, nim)
}

// Create validates and adds a student.
func (s *StudentService) Create(ctx context.Context, m models.Mahasiswa) (models.MutationResult, error) {
	if err := s.validate(m); err != nil {
		return models.MutationResult{}, err
	}
	res, err := s.directory.CreateMahasiswa(ctx, m)
	if err != nil {
		return models.MutationResult{}, err
	}
	s.refresh(ctx)
	return res, nil
}

// Update validates and replaces the student identified by nim. An empty
// payload NIM defaults to nim.
func (s *StudentService) Update(ctx context.Context, nim string, m models.Mahasiswa) (models.MutationResult, error) {
	if m.NIM == "" {
		m.NIM = nim
	}
	if err := s.validate(m); err != nil {
		return models.MutationResult{}, err
	}
	res, err := s.directory.UpdateMahasiswa(ctx, nim, m)
	if err != nil {
		return models.MutationResult{}, err
	}
	s.refresh(ctx)
	return res, nil
}

// Delete removes the student identified by nim.
func (s *StudentService) Delete(ctx context.Context, nim string) (models.MutationResult, error) {
	res, err := s.directory.DeleteMahasiswa(ctx, nim)
	if err != nil {
		return models.MutationResult{}, err
	}
	s.refresh(ctx)
	return res, nil
}

func (s *StudentService) validate(m models.Mahasiswa) error {
	if err := s.validator.Struct(m); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Data mahasiswa tidak valid.")
	}
	return nil
}

// refresh reloads the list after a mutation. The mutation already
// succeeded, so a failed reload is only logged; the resource keeps the
// previous list and reports the error in its status.
func (s *StudentService) refresh(ctx context.Context) {
	if _, err := s.list.Load(ctx, s.directory.ListMahasiswa); err != nil {
		s.logger.Warn("refresh student list", zap.Error(err))
	}
}

var studentColumns = []export.Column{
	{Key: "nim", Title: "NIM"},
	{Key: "nama", Title: "Nama"},
	{Key: "email", Title: "Email"},
	{Key: "nomor_hp", Title: "Nomor HP"},
	{Key: "tempat_lahir", Title: "Tempat Lahir"},
	{Key: "tanggal_lahir", Title: "Tanggal Lahir"},
	{Key: "tahun_masuk", Title: "Tahun Masuk"},
	{Key: "alamat_lengkap", Title: "Alamat"},
}

// Export renders every student matching query as CSV.
func (s *StudentService) Export(ctx context.Context, query string) ([]byte, string, error) {
	students, err := s.all(ctx)
	if err != nil {
		return nil, "", err
	}
	matched := FilterMahasiswa(students, query)
	rows := make([]map[string]string, 0, len(matched))
	for _, m := range matched {
		rows = append(rows, map[string]string{
			"nim":            m.NIM,
			"nama":           m.Nama,
			"email":          m.Email,
			"nomor_hp":       m.NomorHP,
			"tempat_lahir":   m.TempatLahir,
			"tanggal_lahir":  m.TanggalLahir,
			"tahun_masuk":    strconv.Itoa(int(m.TahunMasuk)),
			"alamat_lengkap": m.AlamatLengkap,
		})
	}
	content, err := s.csv.Render(export.Dataset{Columns: studentColumns, Rows: rows})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "gagal membuat file CSV")
	}
	filename := "mahasiswa_" + s.now().Format("20060102") + ".csv"
	return content, filename, nil
}

// Dashboard loads the student and reference lists concurrently and
// summarises them. A failed list does not fail the dashboard: its last good
// copy is counted and its status is reported in Sources.
func (s *StudentService) Dashboard(ctx context.Context) (*dto.AdminDashboardResponse, error) {
	var g errgroup.Group
	g.Go(func() error {
		if _, err := s.all(ctx); err != nil {
			s.logger.Warn("admin dashboard students", zap.Error(err))
		}
		return nil
	})
	if s.refs != nil {
		g.Go(func() error {
			_, _, _ = s.refs.Prodi(ctx)
			return nil
		})
		g.Go(func() error {
			_, _, _ = s.refs.Jurusan(ctx)
			return nil
		})
		g.Go(func() error {
			_, _, _ = s.refs.Dosen(ctx)
			return nil
		})
	}
	_ = g.Wait()

	students := s.list.Snapshot()
	resp := &dto.AdminDashboardResponse{
		TotalStudents:    len(students.Data),
		StudentsByIntake: intakeCounts(students.Data),
		Sources:          map[string]resource.Status{"mahasiswa": students.Status},
	}
	year := s.now().Year()
	for _, m := range students.Data {
		if int(m.TahunMasuk) == year {
			resp.NewStudents++
		}
	}
	if s.refs != nil {
		prodi, jurusan, dosen := s.refs.Snapshots()
		resp.TotalProdi = len(prodi.Data)
		resp.TotalJurusan = len(jurusan.Data)
		resp.TotalDosen = len(dosen.Data)
		resp.Sources["prodi"] = prodi.Status
		resp.Sources["jurusan"] = jurusan.Status
		resp.Sources["dosen"] = dosen.Status
	}
	if students.Status == resource.StatusError && !students.HasData {
		return nil, appErrors.Clone(appErrors.ErrFetchFailed, "Tidak dapat memuat data mahasiswa dari server.")
	}
	return resp, nil
}

func intakeCounts(students []models.Mahasiswa) []dto.IntakeCount {
	byYear := make(map[int]int)
	for _, m := range students {
		if m.TahunMasuk > 0 {
			byYear[int(m.TahunMasuk)]++
		}
	}
	counts := make([]dto.IntakeCount, 0, len(byYear))
	for year, n := range byYear {
		counts = append(counts, dto.IntakeCount{Year: year, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Year < counts[j].Year })
	return counts
}
