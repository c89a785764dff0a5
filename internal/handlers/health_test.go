package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPinger is a Pinger returning a fixed error.
type stubPinger struct {
	err error
}

func (p *stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func serveHealth(t *testing.T, path string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET(path, h)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(nil, "test", "memory")

	w := serveHealth(t, "/health", handler.Health)

	assert.Equal(t, http.StatusOK, w.Code)
	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		db             Pinger
		storage        string
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "memory storage is always ready",
			db:             nil,
			storage:        "memory",
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Storage: "memory"},
		},
		{
			name:           "database reachable",
			db:             &stubPinger{},
			storage:        "postgres",
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Storage: "postgres", Database: "connected"},
		},
		{
			name:           "database unreachable",
			db:             &stubPinger{err: errors.New("connection refused")},
			storage:        "postgres",
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Storage: "postgres", Database: "disconnected"},
		},
		{
			name:           "uninitialized pool",
			db:             &database.Database{},
			storage:        "postgres",
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Storage: "postgres", Database: "disconnected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.db, "test", tt.storage)

			w := serveHealth(t, "/health/ready", handler.Ready)

			assert.Equal(t, tt.expectedStatus, w.Code)
			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		startTime time.Time
		uptime    string
	}{
		{
			name:      "development environment",
			env:       "development",
			startTime: time.Now().Add(-2 * time.Hour),
			uptime:    "2h 0m 0s",
		},
		{
			name:      "production environment",
			env:       "production",
			startTime: time.Now().Add(-25 * time.Hour),
			uptime:    "1d 1h 0m 0s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(nil, tt.env, "memory")
			handler.startTime = tt.startTime

			w := serveHealth(t, "/api/v1/info", handler.Info)

			assert.Equal(t, http.StatusOK, w.Code)
			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			assert.Equal(t, "memory", response.Storage)
			assert.Equal(t, tt.uptime, response.Uptime)
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{name: "seconds only", duration: 45 * time.Second, expected: "0h 0m 45s"},
		{name: "minutes and seconds", duration: 5*time.Minute + 30*time.Second, expected: "0h 5m 30s"},
		{name: "hours, minutes and seconds", duration: 2*time.Hour + 15*time.Minute + 45*time.Second, expected: "2h 15m 45s"},
		{name: "days", duration: 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, expected: "3d 5h 30m 15s"},
		{name: "exactly one day", duration: 24 * time.Hour, expected: "1d 0h 0m 0s"},
		{name: "zero duration", duration: 0, expected: "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestReadyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(ReadyResponse{Status: "ready", Storage: "memory"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"status":"ready","storage":"memory"}`, string(data))
}

func BenchmarkHealthHandler_Health(b *testing.B) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler(nil, "test", "memory")
	router := gin.New()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}
