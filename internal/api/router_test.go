package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The prometheus middleware registers collectors globally, so the router is
// built once for the whole file.
var testRouter *echo.Echo

func router(t *testing.T) *echo.Echo {
	t.Helper()
	if testRouter == nil {
		testRouter = NewRouter(Services{}, RouterOptions{CORSOrigins: []string{"*"}, UploadMaxBytes: 1 << 20}, zerolog.Nop())
	}
	return testRouter
}

func TestRouter_Routes(t *testing.T) {
	cases := []struct {
		method string
		path   string
		code   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/questions/q1/vote", http.StatusUnauthorized},
		{http.MethodGet, "/api/notifications", http.StatusUnauthorized},
		{http.MethodPost, "/api/upload", http.StatusUnauthorized},
		{http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	e := router(t)
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	router(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/own-data", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
}
