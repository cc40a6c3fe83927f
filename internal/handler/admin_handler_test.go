package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/dto"
	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
)

type fakeStudentSrv struct {
	students   []models.Mahasiswa
	pagination *models.Pagination
	mutation   models.MutationResult
	csv        []byte
	err        error

	lastFilter models.MahasiswaFilter
	lastNIM    string
	lastBody   models.Mahasiswa
	lastQuery  string
}

func (f *fakeStudentSrv) List(_ context.Context, filter models.MahasiswaFilter) ([]models.Mahasiswa, *models.Pagination, error) {
	f.lastFilter = filter
	return f.students, f.pagination, f.err
}

func (f *fakeStudentSrv) Get(_ context.Context, nim string) (*models.Mahasiswa, error) {
	f.lastNIM = nim
	if f.err != nil {
		return nil, f.err
	}
	return &models.Mahasiswa{NIM: nim}, nil
}

func (f *fakeStudentSrv) Create(_ context.Context, m models.Mahasiswa) (models.MutationResult, error) {
	f.lastBody = m
	return f.mutation, f.err
}

func (f *fakeStudentSrv) Update(_ context.Context, nim string, m models.Mahasiswa) (models.MutationResult, error) {
	f.lastNIM = nim
	f.lastBody = m
	return f.mutation, f.err
}

func (f *fakeStudentSrv) Delete(_ context.Context, nim string) (models.MutationResult, error) {
	f.lastNIM = nim
	return f.mutation, f.err
}

func (f *fakeStudentSrv) Export(_ context.Context, query string) ([]byte, string, error) {
	f.lastQuery = query
	return f.csv, "mahasiswa_20250520.csv", f.err
}

func (f *fakeStudentSrv) Dashboard(context.Context) (*dto.AdminDashboardResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AdminDashboardResponse{TotalStudents: len(f.students)}, nil
}

type fakeReferenceSrv struct {
	refs        *models.References
	hit         bool
	err         error
	invalidated int
}

func (f *fakeReferenceSrv) Invalidate(context.Context) {
	f.invalidated++
}

func (f *fakeReferenceSrv) All(context.Context) (*models.References, bool, error) {
	return f.refs, f.hit, f.err
}

func TestAdminHandlerListStudents(t *testing.T) {
	srv := &fakeStudentSrv{
		students:   []models.Mahasiswa{{NIM: "C030323001"}},
		pagination: &models.Pagination{Page: 2, PageSize: 25, TotalCount: 26, TotalPages: 2},
	}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodGet, "/admin/students?search=%20budi%20&page=2", nil)

	handler.ListStudents(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "budi", srv.lastFilter.Search)
	assert.Equal(t, 2, srv.lastFilter.Page)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.TotalPages)
}

func TestAdminHandlerListStudentsIgnoresBadPage(t *testing.T) {
	srv := &fakeStudentSrv{}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, _ := newTestContext(http.MethodGet, "/admin/students?page=abc", nil)

	handler.ListStudents(c)

	assert.Equal(t, 1, srv.lastFilter.Page)
}

func TestAdminHandlerCreateStudent(t *testing.T) {
	srv := &fakeStudentSrv{mutation: models.MutationResult{Message: "Data berhasil ditambahkan."}}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodPost, "/admin/students", strPtr(`{"nim":"C030323099","nama":"Sari","email":"sari@mahasiswa.poliban.ac.id","tahun_masuk":"2024"}`))

	handler.CreateStudent(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "C030323099", srv.lastBody.NIM)
	assert.Equal(t, models.FlexInt(2024), srv.lastBody.TahunMasuk)
	assert.Equal(t, "Data berhasil ditambahkan.", decodeEnvelope(t, rec).Message)
}

func TestAdminHandlerCreateStudentRejectsMalformedBody(t *testing.T) {
	handler := NewAdminHandler(&fakeStudentSrv{}, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodPost, "/admin/students", strPtr(`[`))

	handler.CreateStudent(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandlerUpdateUsesPathNIM(t *testing.T) {
	srv := &fakeStudentSrv{mutation: models.MutationResult{Message: "Data berhasil diperbarui."}}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodPut, "/admin/students/C030323001", strPtr(`{"nama":"Budi"}`))
	c.Params = append(c.Params, ginParam("nim", "C030323001"))

	handler.UpdateStudent(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "C030323001", srv.lastNIM)
	assert.Equal(t, "Budi", srv.lastBody.Nama)
}

func TestAdminHandlerDeleteKeepsRemoteStatus(t *testing.T) {
	srv := &fakeStudentSrv{err: appErrors.New("FETCH_FAILED", http.StatusUnprocessableEntity, "Mahasiswa masih memiliki nilai.")}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodDelete, "/admin/students/C030323001", nil)
	c.Params = append(c.Params, ginParam("nim", "C030323001"))

	handler.DeleteStudent(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Mahasiswa masih memiliki nilai.", decodeEnvelope(t, rec).Message)
}

func TestAdminHandlerGetStudentNotFound(t *testing.T) {
	srv := &fakeStudentSrv{err: appErrors.Clone(appErrors.ErrNotFound, "Data mahasiswa tidak ditemukan.")}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodGet, "/admin/students/X", nil)
	c.Params = append(c.Params, ginParam("nim", "X"))

	handler.GetStudent(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "X", srv.lastNIM)
}

func TestAdminHandlerExportStudents(t *testing.T) {
	srv := &fakeStudentSrv{csv: []byte("NIM,Nama\n")}
	handler := NewAdminHandler(srv, &fakeReferenceSrv{})
	c, rec := newTestContext(http.MethodGet, "/admin/students/export?search=budi", nil)

	handler.ExportStudents(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "budi", srv.lastQuery)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "mahasiswa_20250520.csv")
}

func TestAdminHandlerReferences(t *testing.T) {
	refs := &models.References{Prodi: []models.Prodi{{NamaProdi: "Teknik Informatika"}}}
	handler := NewAdminHandler(&fakeStudentSrv{}, &fakeReferenceSrv{refs: refs, hit: false})
	c, rec := newTestContext(http.MethodGet, "/admin/references", nil)

	handler.References(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	assert.Contains(t, string(envelope.Data), "Teknik Informatika")
}

func TestAdminHandlerReferencesFailure(t *testing.T) {
	handler := NewAdminHandler(&fakeStudentSrv{}, &fakeReferenceSrv{err: appErrors.Clone(appErrors.ErrFetchFailed, "Gagal mengambil data prodi")})
	c, rec := newTestContext(http.MethodGet, "/admin/references", nil)

	handler.References(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestAdminHandlerRefreshReferences(t *testing.T) {
	refs := &fakeReferenceSrv{refs: &models.References{}}
	handler := NewAdminHandler(&fakeStudentSrv{}, refs)
	c, rec := newTestContext(http.MethodPost, "/admin/references/refresh", nil)

	handler.RefreshReferences(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, refs.invalidated)
	assert.Equal(t, "Data referensi diperbarui.", decodeEnvelope(t, rec).Message)
}
