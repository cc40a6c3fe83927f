package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/pkg/resource"
)

type referenceFetcher interface {
	ListProdi(ctx context.Context) ([]models.Prodi, error)
	ListJurusan(ctx context.Context) ([]models.Jurusan, error)
	ListDosen(ctx context.Context) ([]models.Pegawai, error)
	ListMataKuliah(ctx context.Context) ([]models.MataKuliah, error)
}

// Cache keys for the reference lists.
const (
	referenceCachePrefix = "reference:"
	cacheKeyProdi        = referenceCachePrefix + "prodi"
	cacheKeyJurusan      = referenceCachePrefix + "jurusan"
	cacheKeyDosen        = referenceCachePrefix + "dosen"
	cacheKeyMataKuliah   = referenceCachePrefix + "matakuliah"
)

// ReferenceService serves the lookup lists of the reference and course
// hosts. Each list is held in a resource so a failed refresh keeps the last
// good copy, and is optionally shared across instances through the cache.
type ReferenceService struct {
	client  referenceFetcher
	cache   *CacheService
	ttl     time.Duration
	logger  *zap.Logger
	prodi   *resource.Resource[[]models.Prodi]
	jurusan *resource.Resource[[]models.Jurusan]
	dosen   *resource.Resource[[]models.Pegawai]
	courses *resource.Resource[[]models.MataKuliah]
}

// NewReferenceService constructs a ReferenceService. ttl bounds how long a
// loaded list is served before it is fetched again.
func NewReferenceService(client referenceFetcher, cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ReferenceService{
		client:  client,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		prodi:   resource.New[[]models.Prodi](),
		jurusan: resource.New[[]models.Jurusan](),
		dosen:   resource.New[[]models.Pegawai](),
		courses: resource.New[[]models.MataKuliah](),
	}
}

// cachedList reads through res, then the shared cache, then the remote
// service. hit is true unless the remote service was called.
func cachedList[T any](ctx context.Context, s *ReferenceService, res *resource.Resource[[]T], key string, fetch func(context.Context) ([]T, error)) ([]T, bool, error) {
	hit := true
	items, err := res.Get(ctx, s.ttl, func(ctx context.Context) ([]T, error) {
		items, cached, err := Remember(ctx, s.cache, key, s.ttl, fetch)
		hit = cached
		return items, err
	})
	if err != nil {
		s.logger.Warn("load reference list", zap.String("list", key), zap.Error(err))
		return nil, false, err
	}
	return items, hit, nil
}

// Prodi returns the study programs.
func (s *ReferenceService) Prodi(ctx context.Context) ([]models.Prodi, bool, error) {
	return cachedList(ctx, s, s.prodi, cacheKeyProdi, s.client.ListProdi)
}

// Jurusan returns the departments.
func (s *ReferenceService) Jurusan(ctx context.Context) ([]models.Jurusan, bool, error) {
	return cachedList(ctx, s, s.jurusan, cacheKeyJurusan, s.client.ListJurusan)
}

// Dosen returns the lecturers.
func (s *ReferenceService) Dosen(ctx context.Context) ([]models.Pegawai, bool, error) {
	return cachedList(ctx, s, s.dosen, cacheKeyDosen, s.client.ListDosen)
}

// MataKuliah returns the remote course catalog.
func (s *ReferenceService) MataKuliah(ctx context.Context) ([]models.MataKuliah, bool, error) {
	return cachedList(ctx, s, s.courses, cacheKeyMataKuliah, s.client.ListMataKuliah)
}

// All loads prodi, jurusan and dosen concurrently. Any failure fails the
// whole call. The boolean is true only when every list was a cache hit.
func (s *ReferenceService) All(ctx context.Context) (*models.References, bool, error) {
	var (
		refs                           models.References
		prodiHit, jurusanHit, dosenHit bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		refs.Prodi, prodiHit, err = s.Prodi(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.Jurusan, jurusanHit, err = s.Jurusan(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.Dosen, dosenHit, err = s.Dosen(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}
	return &refs, prodiHit && jurusanHit && dosenHit, nil
}

// Snapshots returns the current state of each reference list.
func (s *ReferenceService) Snapshots() (resource.Snapshot[[]models.Prodi], resource.Snapshot[[]models.Jurusan], resource.Snapshot[[]models.Pegawai]) {
	return s.prodi.Snapshot(), s.jurusan.Snapshot(), s.dosen.Snapshot()
}

// Invalidate forces every list to be fetched again on next use.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	s.prodi.Invalidate()
	s.jurusan.Invalidate()
	s.dosen.Invalidate()
	s.courses.Invalidate()
	s.cache.Invalidate(ctx, referenceCachePrefix+"*")
}
