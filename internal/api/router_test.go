package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/lyria-api/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment:    "test",
		Port:           "8080",
		AnalyzerModel:  "gemini-2.5-flash",
		Location:       "us-central1",
		AllowedOrigins: []string{"*"},
	}
}

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(testConfig(), nil, nil, "test")
}

func TestRouter_RootHealthCheck(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Lyria Backend is running")
}

func TestRouter_HealthReportsBackendStatus(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])

	analyzer, ok := body["analyzer"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disabled", analyzer["status"])
}

func TestRouter_Metrics(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["uptime"])

	apiInfo, ok := body["api"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", apiInfo["analyzer_model"])
	assert.Equal(t, "lyria-002", apiInfo["generation_model"])
}

func TestRouter_RequestIDHeader(t *testing.T) {
	router := testRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CORSExposesContentDisposition(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
}

func TestRouter_UnconfiguredBackendsReturn503(t *testing.T) {
	router := testRouter()

	for _, path := range []string{"/api/v1/analyze", "/api/v1/generate"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// empty body fails binding first on analyze/generate
		assert.Contains(t, []int{http.StatusBadRequest, http.StatusServiceUnavailable}, w.Code, path)
	}
}
