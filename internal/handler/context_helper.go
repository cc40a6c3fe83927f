package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/internal/session"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
	"github.com/noah-isme/simpadu-api/pkg/response"
)

// identityFromContext returns the identity authorized by the guard, writing
// a 401 envelope when the route was registered without one.
func identityFromContext(c *gin.Context) (models.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Identity{}, false
	}
	return identity, true
}

func sessionFromContext(c *gin.Context) (*session.Store, bool) {
	store, ok := middleware.SessionStore(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "session middleware missing"))
		return nil, false
	}
	return store, true
}

// waitForSession blocks until store has restored or the request ends.
func waitForSession(c *gin.Context, store *session.Store) {
	select {
	case <-store.Ready():
	case <-c.Request.Context().Done():
	}
}

func attachment(c *gin.Context, filename, contentType string, content []byte) {
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, content)
}
