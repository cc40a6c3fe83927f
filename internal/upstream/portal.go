package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/noah-isme/simpadu-api/internal/models"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
)

// GetUser fetches the user document, password included, for a login attempt.
func (cl *Client) GetUser(ctx context.Context, id string) (*models.UserRecord, error) {
	res, err := cl.do(ctx, call{
		host:     HostPortal,
		endpoint: "users.get",
		method:   http.MethodGet,
		path:     "/api/users/" + url.PathEscape(id),
		failure:  "Gagal mengambil data pengguna.",
	})
	if err != nil {
		return nil, err
	}
	var user models.UserRecord
	if err := decodeData(res.env, &user, "Data pengguna tidak ditemukan."); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetMahasiswa fetches one student record by NIM.
func (cl *Client) GetMahasiswa(ctx context.Context, nim string) (*models.Mahasiswa, error) {
	res, err := cl.do(ctx, call{
		host:     HostPortal,
		endpoint: "mahasiswa.get",
		method:   http.MethodGet,
		path:     "/api/mahasiswa/" + url.PathEscape(nim),
		failure:  "Gagal mengambil data mahasiswa",
	})
	if err != nil {
		if UpstreamStatus(err) == http.StatusNotFound {
			return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, http.StatusNotFound, "Data mahasiswa tidak ditemukan.")
		}
		return nil, err
	}
	var m models.Mahasiswa
	if err := decodeData(res.env, &m, "Data mahasiswa tidak ditemukan."); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMahasiswa fetches every student record.
func (cl *Client) ListMahasiswa(ctx context.Context) ([]models.Mahasiswa, error) {
	res, err := cl.do(ctx, call{
		host:     HostPortal,
		endpoint: "mahasiswa.list",
		method:   http.MethodGet,
		path:     "/api/mahasiswa",
		failure:  "Tidak dapat memuat data mahasiswa dari server.",
	})
	if err != nil {
		return nil, err
	}
	return decodeList[models.Mahasiswa](res.env)
}

// CreateMahasiswa adds a student record.
func (cl *Client) CreateMahasiswa(ctx context.Context, m models.Mahasiswa) (models.MutationResult, error) {
	return cl.mutate(ctx, call{
		host:     HostPortal,
		endpoint: "mahasiswa.create",
		method:   http.MethodPost,
		path:     "/api/tambah-mahasiswa",
		body:     m,
	}, "Operasi berhasil disimpan.")
}

// UpdateMahasiswa replaces the student record identified by nim.
func (cl *Client) UpdateMahasiswa(ctx context.Context, nim string, m models.Mahasiswa) (models.MutationResult, error) {
	return cl.mutate(ctx, call{
		host:     HostPortal,
		endpoint: "mahasiswa.update",
		method:   http.MethodPut,
		path:     "/api/ubah-mahasiswa/" + url.PathEscape(nim),
		body:     m,
	}, "Operasi berhasil disimpan.")
}

// DeleteMahasiswa removes the student record identified by nim.
func (cl *Client) DeleteMahasiswa(ctx context.Context, nim string) (models.MutationResult, error) {
	return cl.mutate(ctx, call{
		host:     HostPortal,
		endpoint: "mahasiswa.delete",
		method:   http.MethodDelete,
		path:     "/api/hapus-mahasiswa/" + url.PathEscape(nim),
	}, "Data berhasil dihapus.")
}

// mutate runs a write call. The remote message is surfaced on both success
// and failure; a remote 4xx keeps its status so callers can tell a rejected
// payload from an unavailable service.
func (cl *Client) mutate(ctx context.Context, c call, okMessage string) (models.MutationResult, error) {
	if c.failure == "" {
		c.failure = "Operasi gagal."
	}
	res, err := cl.do(ctx, c)
	if err != nil {
		var appErr *appErrors.Error
		if status := UpstreamStatus(err); status >= 400 && status < 500 && errors.As(err, &appErr) {
			rejected := *appErr
			rejected.Status = status
			return models.MutationResult{}, &rejected
		}
		return models.MutationResult{}, err
	}
	if res.env.Success != nil && !*res.env.Success {
		message := res.env.Message
		if message == "" {
			message = c.failure
		}
		return models.MutationResult{}, appErrors.Clone(appErrors.ErrFetchFailed, message)
	}
	message := res.env.Message
	if message == "" {
		message = okMessage
	}
	return models.MutationResult{Message: message}, nil
}
