package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorHealthTransitions(t *testing.T) {
	m := NewMonitor()
	assert.True(t, m.IsHealthy(), "no runs yet should be healthy")
	assert.Equal(t, "No runs yet", m.GetStatusSummary())

	m.RecordCriticalFailure(errors.New("source down"), time.Second)
	assert.False(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "source down")
	assert.Contains(t, m.GetStatusSummary(), "1 of 1 runs failed")

	m.RecordPartialFailure(errors.New("view skipped"), time.Second)
	assert.False(t, m.IsHealthy(), "partial failures do not change health")

	m.RecordSuccess("kept 120 samples", time.Second)
	assert.True(t, m.IsHealthy())
	assert.Contains(t, m.GetStatusSummary(), "kept 120 samples")
}

func TestHealthEndpoints(t *testing.T) {
	m := NewMonitor()
	router := NewHealthServer(m, "").Router()

	tests := []struct {
		name       string
		setup      func()
		path       string
		expectCode int
		expectBody string
	}{
		{name: "Healthy before first run", setup: func() {}, path: "/health", expectCode: http.StatusOK, expectBody: "OK - No runs yet"},
		{
			name:       "Unhealthy after failure",
			setup:      func() { m.RecordCriticalFailure(errors.New("boom"), 0) },
			path:       "/health",
			expectCode: http.StatusServiceUnavailable,
			expectBody: "Service unhealthy",
		},
		{name: "Status always OK", setup: func() {}, path: "/status", expectCode: http.StatusOK, expectBody: "Last run failed"},
		{
			name:       "Healthy after success",
			setup:      func() { m.RecordSuccess("done", 0) },
			path:       "/health",
			expectCode: http.StatusOK,
			expectBody: "OK - ✅ Last run",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectBody)
		})
	}
}

func TestHealthServerDefaultPort(t *testing.T) {
	h := NewHealthServer(NewMonitor(), "")
	assert.Equal(t, "8080", h.port)
	assert.NoError(t, h.Shutdown(context.Background()))
}
