package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/authz"
	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/internal/service"
	"github.com/noah-isme/simpadu-api/internal/session"
)

const (
	testPrefix = "test:session"
	testCookie = "simpadu_sid"
	testSID    = "5f0c8a52-7d53-4c1c-9a52-0d9a1c3f8e11"
)

// gatedStorage blocks reads until release is closed.
type gatedStorage struct {
	session.Storage
	release chan struct{}
}

func (g *gatedStorage) Get(ctx context.Context, key string) (string, bool, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	return g.Storage.Get(ctx, key)
}

func seedIdentity(t *testing.T, storage session.Storage, identity models.Identity) {
	t.Helper()
	raw, err := json.Marshal(identity)
	require.NoError(t, err)
	require.NoError(t, session.Scoped(storage, testPrefix, testSID).Set(context.Background(), session.UserKey, string(raw)))
}

func newGuardedRouter(storage session.Storage, timeout time.Duration, message string, required ...authz.Capability) *gin.Engine {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(storage, testPrefix, timeout, nil)
	r := gin.New()
	r.Use(Session(manager, SessionCookie{Name: testCookie}))
	r.GET("/protected", RequireCapability(GuardConfig{
		LoginPath:      "/simpadu/login",
		Timeout:        manager.RestoreTimeout(),
		LoadingMessage: message,
		Metrics:        service.NewMetricsService(),
	}, required...), func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, identity.Name)
	})
	return r
}

func get(r http.Handler, withCookie bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if withCookie {
		req.AddCookie(&http.Cookie{Name: testCookie, Value: testSID})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGuardNeverRedirectsWhileLoading(t *testing.T) {
	storage := &gatedStorage{Storage: session.NewMemoryStorage(0), release: make(chan struct{})}
	defer close(storage.release)
	r := newGuardedRouter(storage, 30*time.Millisecond, AdminLoadingMessage, authz.CapManageStudents)

	rec := get(r, true)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Location"))
	assert.Contains(t, rec.Body.String(), AdminLoadingMessage)
	assert.Contains(t, rec.Body.String(), "SESSION_LOADING")
}

func TestGuardRedirectsOnceLoadedWithoutSession(t *testing.T) {
	r := newGuardedRouter(session.NewMemoryStorage(0), time.Second, PortalLoadingMessage, authz.CapPortal)

	rec := get(r, true)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/simpadu/login", rec.Header().Get("Location"))
}

func TestGuardWaitsForSlowRestore(t *testing.T) {
	storage := &gatedStorage{Storage: session.NewMemoryStorage(0), release: make(chan struct{})}
	seedIdentity(t, storage.Storage, models.Identity{ID: "4", Name: "Budi", Role: "mahasiswa"})
	r := newGuardedRouter(storage, time.Second, PortalLoadingMessage, authz.CapPortal)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(storage.release)
	}()

	rec := get(r, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Budi", rec.Body.String())
}

func TestGuardAdminRoutes(t *testing.T) {
	admin := session.NewMemoryStorage(0)
	seedIdentity(t, admin, models.Identity{ID: "2", Name: "Administrator", Role: "admin"})
	rec := get(newGuardedRouter(admin, time.Second, AdminLoadingMessage, authz.CapManageStudents), true)
	assert.Equal(t, http.StatusOK, rec.Code)

	student := session.NewMemoryStorage(0)
	seedIdentity(t, student, models.Identity{ID: "4", Name: "Budi", Role: "mahasiswa"})
	rec = get(newGuardedRouter(student, time.Second, AdminLoadingMessage, authz.CapManageStudents), true)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/simpadu/login", rec.Header().Get("Location"))

	rec = get(newGuardedRouter(student, time.Second, PortalLoadingMessage, authz.CapPortal), true)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionIssuesCookieForNewClients(t *testing.T) {
	r := newGuardedRouter(session.NewMemoryStorage(0), time.Second, PortalLoadingMessage, authz.CapPortal)

	rec := get(r, false)
	assert.Equal(t, http.StatusFound, rec.Code)
	cookie := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, testCookie+"="))
	assert.Contains(t, cookie, "HttpOnly")

	rec = get(r, true)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestSessionReissuesCookieOnSignIn(t *testing.T) {
	gin.SetMode(gin.TestMode)
	manager := session.NewManager(session.NewMemoryStorage(0), testPrefix, time.Second, nil)
	r := gin.New()
	r.Use(Session(manager, SessionCookie{Name: testCookie, Path: "/simpadu/"}))
	r.POST("/signin", func(c *gin.Context) {
		store, _ := SessionStore(c)
		<-store.Ready()
		if err := store.SignIn(c.Request.Context(), models.Identity{ID: "4", Name: "Budi", Role: "mahasiswa"}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, store.ID())
	})

	req := httptest.NewRequest(http.MethodPost, "/signin", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: testSID})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.NotEqual(t, testSID, cookies[0].Value)
	assert.Equal(t, rec.Body.String(), cookies[0].Value)
	assert.Equal(t, "/simpadu/", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
}

func TestResponseMetaCollectsCacheHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/meta", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.GET("/none", func(c *gin.Context) {
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/meta", nil))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/none", nil))
	assert.Nil(t, meta)
}
