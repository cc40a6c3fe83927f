// Package upstream talks to the external SIMPADU services: the portal host
// (users and mahasiswa), the reference host (jurusan, prodi, dosen) and the
// course host (matakuliah).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/simpadu-api/pkg/config"
	appErrors "github.com/noah-isme/simpadu-api/pkg/errors"
)

const maxBodyBytes = 8 << 20

// Host names used as metric labels.
const (
	HostPortal    = "portal"
	HostReference = "reference"
	HostCourse    = "course"
)

// Observer receives one observation per upstream call.
type Observer interface {
	ObserveUpstream(host, endpoint string, status int, duration time.Duration)
}

// Client is a typed client for the SIMPADU services. It never retries.
type Client struct {
	http     *http.Client
	bases    map[string]string
	observer Observer
	logger   *zap.Logger
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.UpstreamConfig, observer Observer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		bases: map[string]string{
			HostPortal:    cfg.PortalBaseURL,
			HostReference: cfg.ReferenceBaseURL,
			HostCourse:    cfg.CourseBaseURL,
		},
		observer: observer,
		logger:   logger,
	}
}

// envelope is the response shape shared by every SIMPADU service.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success *bool           `json:"success"`
	Message string          `json:"message"`
}

func (e envelope) hasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// call describes one request.
type call struct {
	host     string
	endpoint string // metric label, without ids
	method   string
	path     string
	body     interface{}
	// failure is the message used when the call fails at the transport or
	// HTTP status level and the remote gave no message of its own.
	failure string
}

// result is a decoded envelope along with the HTTP status.
type result struct {
	status int
	env    envelope
}

// do performs c and decodes the envelope. Transport errors and non-2xx
// statuses become FETCH_FAILED; a body that is not an envelope becomes
// MALFORMED_RESPONSE.
func (cl *Client) do(ctx context.Context, c call) (result, error) {
	url := cl.bases[c.host] + c.path

	var body io.Reader
	if c.body != nil {
		payload, err := json.Marshal(c.body)
		if err != nil {
			return result{}, fmt.Errorf("encode %s body: %w", c.endpoint, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, url, body)
	if err != nil {
		return result{}, fmt.Errorf("build %s request: %w", c.endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := cl.http.Do(req)
	if err != nil {
		cl.observe(c, 0, start)
		cl.logger.Warn("upstream request failed",
			zap.String("host", c.host), zap.String("endpoint", c.endpoint), zap.Error(err))
		return result{}, fetchFailed(c.failure, 0, err)
	}
	defer resp.Body.Close()
	cl.observe(c, resp.StatusCode, start)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return result{}, fetchFailed(c.failure, 0, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := c.failure
		if decodeErr == nil && env.Message != "" {
			message = env.Message
		}
		cl.logger.Warn("upstream returned error status",
			zap.String("host", c.host), zap.String("endpoint", c.endpoint), zap.Int("status", resp.StatusCode))
		return result{status: resp.StatusCode, env: env}, fetchFailed(message, resp.StatusCode, fmt.Errorf("%s %s: status %d", c.method, c.path, resp.StatusCode))
	}
	if decodeErr != nil {
		return result{}, malformed("", decodeErr)
	}
	return result{status: resp.StatusCode, env: env}, nil
}

func (cl *Client) observe(c call, status int, start time.Time) {
	if cl.observer != nil {
		cl.observer.ObserveUpstream(c.host, c.endpoint, status, time.Since(start))
	}
}

// StatusError is the upstream HTTP status behind a FETCH_FAILED error, or 0
// for transport failures.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string { return e.Err.Error() }
func (e *StatusError) Unwrap() error { return e.Err }

// UpstreamStatus extracts the remote HTTP status from err, if any.
func UpstreamStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

func fetchFailed(message string, status int, cause error) *appErrors.Error {
	if message == "" {
		message = appErrors.ErrFetchFailed.Message
	}
	return appErrors.Wrap(&StatusError{Status: status, Err: cause}, appErrors.ErrFetchFailed.Code, appErrors.ErrFetchFailed.Status, message)
}

func malformed(message string, cause error) *appErrors.Error {
	if message == "" {
		message = appErrors.ErrMalformedResponse.Message
	}
	if cause == nil {
		cause = errors.New("unexpected response envelope")
	}
	return appErrors.Wrap(cause, appErrors.ErrMalformedResponse.Code, appErrors.ErrMalformedResponse.Status, message)
}

// decodeData unmarshals the envelope data into dest, reporting a malformed
// response when data is missing or of the wrong shape.
func decodeData(env envelope, dest interface{}, missing string) error {
	if !env.hasData() {
		return malformed(missing, nil)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return malformed("", err)
	}
	return nil
}

// decodeList unmarshals an array payload; a missing data field is an empty
// list.
func decodeList[T any](env envelope) ([]T, error) {
	items := make([]T, 0)
	if !env.hasData() {
		return items, nil
	}
	if bytes.TrimSpace(env.Data)[0] != '[' {
		return nil, malformed("", errors.New("data is not an array"))
	}
	if err := json.Unmarshal(env.Data, &items); err != nil {
		return nil, malformed("", err)
	}
	return items, nil
}
