package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/simpadu-api/internal/models"
)

func session(role string) models.SessionState {
	return models.SessionState{
		Identity:        &models.Identity{ID: "2", Email: "x@y.z", Role: role},
		IsAuthenticated: true,
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name     string
		state    models.SessionState
		required []Capability
		want     Decision
	}{
		{"loading wins over everything", models.SessionState{IsLoading: true, IsAuthenticated: true, Identity: &models.Identity{Role: "admin"}}, []Capability{CapManageStudents}, Loading},
		{"anonymous portal", models.SessionState{}, []Capability{CapPortal}, Unauthorized},
		{"student portal", session("mahasiswa"), []Capability{CapPortal}, Authorized},
		{"student admin", session("mahasiswa"), []Capability{CapManageStudents}, Unauthorized},
		{"admin admin", session("ADMIN"), []Capability{CapManageStudents}, Authorized},
		{"admin portal", session("admin"), []Capability{CapPortal}, Authorized},
		{"unknown role portal", session("dosen"), []Capability{CapPortal}, Authorized},
		{"unknown role admin", session("dosen"), []Capability{CapManageStudents}, Unauthorized},
		{"inconsistent state", models.SessionState{IsAuthenticated: true}, []Capability{CapPortal}, Unauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.state, tc.required...))
		})
	}
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", LandingPath(models.RoleAdmin))
	assert.Equal(t, "/dashboard", LandingPath(models.RoleMahasiswa))
	assert.Equal(t, "/dashboard", LandingPath(models.RoleUnknown))
}
