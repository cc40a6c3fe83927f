package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAllowlist(t *testing.T) {
	got := parseAllowlist(" Admin@Admin.com = 2 ,broken, =5,c030323022@mahasiswa.poliban.ac.id=4")

	assert.Equal(t, map[string]string{
		"admin@admin.com":                    "2",
		"c030323022@mahasiswa.poliban.ac.id": "4",
	}, got)
}

func TestNormalizeBasePath(t *testing.T) {
	assert.Equal(t, "", normalizeBasePath("/"))
	assert.Equal(t, "", normalizeBasePath(""))
	assert.Equal(t, "/simpadu", normalizeBasePath("simpadu/"))
	assert.Equal(t, "/simpadu", normalizeBasePath("/simpadu"))
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, 2*time.Second, parseDuration("nope", 2*time.Second))
	assert.Equal(t, time.Minute, parseDuration("1m", 2*time.Second))
	assert.Equal(t, time.Duration(0), parseDuration("", 0))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/simpadu", cfg.BasePath)
	assert.Equal(t, StoreMemory, cfg.Session.Store)
	assert.Equal(t, "2", cfg.Auth.Allowlist["admin@admin.com"])
	assert.Equal(t, 3*time.Second, cfg.Session.RestoreTimeout)
}
