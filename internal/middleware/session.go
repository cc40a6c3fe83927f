package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/simpadu-api/internal/models"
	"github.com/noah-isme/simpadu-api/internal/session"
)

const (
	// ContextSessionKey is the gin context key storing the client's *session.Store.
	ContextSessionKey = "session"
	// ContextIdentityKey stores the authorized models.Identity once the guard passed.
	ContextIdentityKey = "currentUser"
)

// SessionCookie configures the cookie carrying the session id.
type SessionCookie struct {
	Name   string
	Path   string
	Secure bool
	MaxAge int
}

// Session opens the caller's session store. Clients without a valid session
// cookie get a fresh id, and so does a client that signs in. The store
// restores in the background; handlers that need a decision go through
// RequireCapability.
func Session(manager *session.Manager, cookie SessionCookie) gin.HandlerFunc {
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return func(c *gin.Context) {
		issue := func(sid string) {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie.Name, sid, cookie.MaxAge, cookie.Path, "", cookie.Secure, true)
		}

		sid, err := c.Cookie(cookie.Name)
		if err != nil || !manager.ValidID(sid) {
			sid = manager.NewID()
			issue(sid)
		}
		store := manager.Open(c.Request.Context(), sid)
		store.OnRotate(issue)
		c.Set(ContextSessionKey, store)
		c.Next()
	}
}

// SessionStore returns the store opened by Session.
func SessionStore(c *gin.Context) (*session.Store, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	store, ok := value.(*session.Store)
	return store, ok
}

// CurrentIdentity returns the identity authorized by RequireCapability.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := value.(models.Identity)
	return identity, ok
}
