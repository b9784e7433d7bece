package httpadapter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReadiness struct {
	err error
}

func (s *stubReadiness) CheckReadiness(context.Context) error { return s.err }

type stubLatest struct {
	data []byte
	err  error
}

func (s *stubLatest) Latest() ([]byte, error) { return s.data, s.err }

func newTestServer(ready *stubReadiness, latest *stubLatest) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", ready, latest, logger)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubReadiness{}, &stubLatest{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "ready", err: nil, wantStatus: http.StatusOK},
		{name: "not ready", err: errors.New("no analysis run has completed yet"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(&stubReadiness{err: tt.err}, &stubLatest{})

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestLatestEndpoint(t *testing.T) {
	stored := []byte(`{"timestamp":"2026-01-15T08:30:00Z","sources":{}}`)
	srv := newTestServer(&stubReadiness{}, &stubLatest{data: stored})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(stored), rec.Body.String(), "stored bytes are served verbatim")
}

func TestLatestEndpointBeforeFirstRun(t *testing.T) {
	srv := newTestServer(&stubReadiness{}, &stubLatest{err: os.ErrNotExist})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no analysis available yet"}`, rec.Body.String())
}

func TestLatestEndpointReadFailure(t *testing.T) {
	srv := newTestServer(&stubReadiness{}, &stubLatest{err: errors.New("permission denied")})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/latest", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(&stubReadiness{}, &stubLatest{})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
