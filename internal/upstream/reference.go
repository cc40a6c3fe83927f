package upstream

import (
	"context"
	"errors"
	"net/http"

	"github.com/noah-isme/simpadu-api/internal/models"
)

// referenceList fetches a list from the reference host. These endpoints
// report success explicitly and anything but success: true is rejected.
func referenceList[T any](ctx context.Context, cl *Client, endpoint, path, failure string) ([]T, error) {
	res, err := cl.do(ctx, call{
		host:     HostReference,
		endpoint: endpoint,
		method:   http.MethodGet,
		path:     path,
		failure:  failure,
	})
	if err != nil {
		return nil, err
	}
	if res.env.Success == nil || !*res.env.Success {
		message := res.env.Message
		if message == "" {
			message = failure
		}
		return nil, malformed(message, errors.New(endpoint+": success flag not set"))
	}
	return decodeList[T](res.env)
}

// ListJurusan fetches the departments.
func (cl *Client) ListJurusan(ctx context.Context) ([]models.Jurusan, error) {
	return referenceList[models.Jurusan](ctx, cl, "jurusan.list", "/api/data/jurusan", "Gagal mengambil data jurusan")
}

// ListProdi fetches the study programs.
func (cl *Client) ListProdi(ctx context.Context) ([]models.Prodi, error) {
	return referenceList[models.Prodi](ctx, cl, "prodi.list", "/api/data/prodi", "Gagal mengambil data prodi")
}

// ListDosen fetches the lecturers.
func (cl *Client) ListDosen(ctx context.Context) ([]models.Pegawai, error) {
	return referenceList[models.Pegawai](ctx, cl, "dosen.list", "/api/data/pegawai/dosen/", "Gagal mengambil data dosen")
}

// ListMataKuliah fetches the course catalog. The course host must answer
// with an array in data.
func (cl *Client) ListMataKuliah(ctx context.Context) ([]models.MataKuliah, error) {
	res, err := cl.do(ctx, call{
		host:     HostCourse,
		endpoint: "matakuliah.list",
		method:   http.MethodGet,
		path:     "/matakuliah",
		failure:  "Gagal mengambil data mata kuliah",
	})
	if err != nil {
		return nil, err
	}
	if !res.env.hasData() {
		return nil, malformed("", errors.New("matakuliah: data is missing"))
	}
	return decodeList[models.MataKuliah](res.env)
}
