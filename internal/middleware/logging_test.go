package middleware_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"skinscan-backend/internal/middleware"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.GET("/api/v1/scans", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "u1")
		c.Status(http.StatusNoContent)
	})

	t.Run("assigns request id", func(t *testing.T) {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scans", nil))

		requestID := w.Header().Get("X-Request-Id")
		assert.NotEmpty(t, requestID)

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "http_request", line["msg"])
		assert.Equal(t, "/api/v1/scans", line["path"])
		assert.Equal(t, float64(http.StatusNoContent), line["status"])
		assert.Equal(t, "u1", line["user_id"])
		assert.Equal(t, requestID, line["request_id"])
	})

	t.Run("propagates request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/scans", nil)
		req.Header.Set("X-Request-Id", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", w.Header().Get("X-Request-Id"))
	})
}
