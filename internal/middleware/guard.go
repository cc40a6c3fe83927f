package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/authz"
	"github.com/noah-isme/simpadu-api/internal/service"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

// Placeholder messages answered while a session is still loading.
const (
	PortalLoadingMessage = "Memuat sesi..."
	AdminLoadingMessage  = "Memeriksa otorisasi admin..."
)

// GuardConfig tunes RequireCapability.
type GuardConfig struct {
	// LoginPath is where unauthorized clients are redirected.
	LoginPath string
	// Timeout bounds the wait for the session to finish restoring.
	Timeout time.Duration
	// LoadingMessage is returned with 503 when the wait times out.
	LoadingMessage string
	Metrics        *service.MetricsService
}

// RequireCapability waits for the session to leave the loading state and
// then applies the authorization policy. It never redirects while the
// session is loading: a restore that outlives the timeout gets a 503
// placeholder instead.
func RequireCapability(cfg GuardConfig, required ...authz.Capability) gin.HandlerFunc {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.LoadingMessage == "" {
		cfg.LoadingMessage = PortalLoadingMessage
	}
	labels := make([]string, len(required))
	for i, capability := range required {
		labels[i] = string(capability)
	}
	label := strings.Join(labels, ",")

	return func(c *gin.Context) {
		store, ok := SessionStore(c)
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session middleware missing"))
			c.Abort()
			return
		}

		timer := time.NewTimer(cfg.Timeout)
		select {
		case <-store.Ready():
		case <-timer.C:
		case <-c.Request.Context().Done():
		}
		timer.Stop()

		decision := authz.Decide(store.Snapshot(), required...)
		cfg.Metrics.RecordGuardDecision(label, decision.String())

		switch decision {
		case authz.Loading:
			c.Header("Retry-After", "1")
			response.Error(c, appErrors.Clone(appErrors.ErrSessionLoading, cfg.LoadingMessage))
			c.Abort()
		case authz.Unauthorized:
			c.Redirect(http.StatusFound, cfg.LoginPath)
			c.Abort()
		default:
			identity, _ := store.Identity()
			c.Set(ContextIdentityKey, identity)
			c.Next()
		}
	}
}
