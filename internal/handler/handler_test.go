package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/simpadu-api/internal/middleware"
	"github.com/noah-isme/simpadu-api/internal/models"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Success    bool                   `json:"success"`
	Message    string                 `json:"message"`
	Pagination *models.Pagination     `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
	Error      *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

var studentIdentity = models.Identity{
	ID:    "4",
	Name:  "Budi Santoso",
	Email: "c030323022@mahasiswa.poliban.ac.id",
	Role:  "mahasiswa",
}

func newTestContext(method, target string, body *string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body != nil {
		c.Request = httptest.NewRequest(method, target, strings.NewReader(*body))
		c.Request.Header.Set("Content-Type", "application/json")
	} else {
		c.Request = httptest.NewRequest(method, target, nil)
	}
	middleware.WithResponseMeta()(c)
	return c, rec
}

func withIdentity(c *gin.Context, identity models.Identity) {
	c.Set(middleware.ContextIdentityKey, identity)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func strPtr(s string) *string { return &s }

func ginParam(key, value string) gin.Param {
	return gin.Param{Key: key, Value: value}
}
