package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/resource"
)

type mockReferenceClient struct {
	mu         sync.Mutex
	prodi      []models.Prodi
	jurusan    []models.Jurusan
	dosen      []models.Pegawai
	matakuliah []models.MataKuliah
	errs       map[string]error
	calls      map[string]int
}

func newMockReferenceClient() *mockReferenceClient {
	return &mockReferenceClient{
		prodi: []models.Prodi{
			{IDProdi: 1, NamaProdi: "Teknik Informatika", Jenjang: "D3", IDJurusan: 2},
			{IDProdi: 2, NamaProdi: "Sistem Informasi", Jenjang: "D4", IDJurusan: 2},
		},
		jurusan: []models.Jurusan{{IDJurusan: 2, NamaJurusan: "Teknik Elektro"}},
		dosen:   []models.Pegawai{{IDPegawai: "P01", NamaPegawai: "Agus Setiyo Budi Nugroho"}},
		matakuliah: []models.MataKuliah{
			{ID: 1, KodeMatakuliah: "TI101", NamaMatakuliah: "Basis Data", SKS: 3},
			{ID: 2, KodeMatakuliah: "TI102", NamaMatakuliah: "Pemrograman Web", SKS: 3},
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (m *mockReferenceClient) record(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
	return m.errs[name]
}

func (m *mockReferenceClient) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockReferenceClient) fail(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

func (m *mockReferenceClient) ListProdi(ctx context.Context) ([]models.Prodi, error) {
	if err := m.record("prodi"); err != nil {
		return nil, err
	}
	return m.prodi, nil
}

func (m *mockReferenceClient) ListJurusan(ctx context.Context) ([]models.Jurusan, error) {
	if err := m.record("jurusan"); err != nil {
		return nil, err
	}
	return m.jurusan, nil
}

func (m *mockReferenceClient) ListDosen(ctx context.Context) ([]models.Pegawai, error) {
	if err := m.record("dosen"); err != nil {
		return nil, err
	}
	return m.dosen, nil
}

func (m *mockReferenceClient) ListMataKuliah(ctx context.Context) ([]models.MataKuliah, error) {
	if err := m.record("matakuliah"); err != nil {
		return nil, err
	}
	return m.matakuliah, nil
}

// memoryCacheRepo is a CacheRepository keeping JSON in a map.
type memoryCacheRepo struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: map[string][]byte{}}
}

func (r *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.entries[key] = raw
	r.mu.Unlock()
	return nil
}

func (r *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.entries {
		if strings.HasPrefix(k, prefix) {
			delete(r.entries, k)
		}
	}
	return nil
}

func TestReferenceServiceServesLoadedListFromMemory(t *testing.T) {
	client := newMockReferenceClient()
	svc := NewReferenceService(client, nil, time.Minute, nil)

	first, hit, err := svc.Prodi(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, first, 2)

	second, hit, err := svc.Prodi(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, client.count("prodi"))
}

func TestReferenceServiceSharesListsThroughCache(t *testing.T) {
	client := newMockReferenceClient()
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)

	_, hit, err := NewReferenceService(client, cache, time.Minute, nil).Dosen(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	dosen, hit, err := NewReferenceService(client, cache, time.Minute, nil).Dosen(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "P01", dosen[0].IDPegawai)
	assert.Equal(t, 1, client.count("dosen"))
}

func TestReferenceServiceKeepsLastGoodListOnFailure(t *testing.T) {
	client := newMockReferenceClient()
	svc := NewReferenceService(client, nil, time.Minute, nil)
	ctx := context.Background()

	_, _, err := svc.Jurusan(ctx)
	require.NoError(t, err)

	client.fail("jurusan", appErrors.Clone(appErrors.ErrFetchFailed, "Gagal mengambil data jurusan"))
	svc.Invalidate(ctx)

	_, _, err = svc.Jurusan(ctx)
	require.Error(t, err)

	_, jurusan, _ := svc.Snapshots()
	assert.Equal(t, resource.StatusError, jurusan.Status)
	assert.True(t, jurusan.HasData)
	assert.Len(t, jurusan.Data, 1)
	assert.Equal(t, 2, client.count("jurusan"))
}

func TestReferenceServiceAllIsAllOrNothing(t *testing.T) {
	client := newMockReferenceClient()
	svc := NewReferenceService(client, nil, time.Minute, nil)

	refs, _, err := svc.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, refs.Prodi, 2)
	assert.Len(t, refs.Jurusan, 1)
	assert.Len(t, refs.Dosen, 1)

	client.fail("dosen", appErrors.Clone(appErrors.ErrMalformedResponse, "Gagal mengambil data dosen"))
	svc = NewReferenceService(client, nil, time.Minute, nil)
	refs, _, err = svc.All(context.Background())
	require.Error(t, err)
	assert.Nil(t, refs)
	assert.Equal(t, appErrors.ErrMalformedResponse.Code, appErrors.FromError(err).Code)
}

func TestCacheServiceDisabledAlwaysMisses(t *testing.T) {
	repo := newMemoryCacheRepo()
	cache := NewCacheService(repo, nil, 0, nil, false)

	cache.Set(context.Background(), "k", "v", 0)
	var out string
	assert.False(t, cache.Get(context.Background(), "k", &out))
	assert.Empty(t, repo.entries)
}
