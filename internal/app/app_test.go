package app

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gurusharan-Fintech/Finlense/internal/config"
	"github.com/Gurusharan-Fintech/Finlense/internal/infrastructure"
)

// buildTestApp wires a full application against a throwaway config.
// Telemetry registers global collectors, so tests share one instance.
func buildTestApp(t *testing.T) *Application {
	t.Helper()
	infrastructure.ResetLoggerForTesting()

	cfg := config.Default()
	cfg.Logging.Output = "console"
	cfg.Security.RateLimit.Enabled = false
	cfg.Paths.LogsDir = t.TempDir()
	cfg.Paths.ReportsDir = t.TempDir()

	app, err := NewApplicationWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(app.hub.Stop)
	return app
}

func TestApplication_Routes(t *testing.T) {
	app := buildTestApp(t)

	t.Run("health", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "healthy")
	})

	t.Run("version", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), infrastructure.ServiceVersion)
	})

	t.Run("symbols", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/symbols", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "AAPL")
	})

	t.Run("session defaults", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "1y")
	})

	t.Run("unknown ticker is a problem document", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/ZZZZ", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("request id header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}
