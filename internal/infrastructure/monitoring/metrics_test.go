package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics()
		NewMetrics()
	})
}

func TestTimerRecordsStatus(t *testing.T) {
	m := NewMetrics()

	NewTimer(m, "write").Stop(nil)
	NewTimer(m, "write").Stop(errors.New("disk full"))
	NewTimer(m, "write").Stop(nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FileOps.WithLabelValues("write", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FileOps.WithLabelValues("write", "error")))
}

func TestShellRecorders(t *testing.T) {
	m := NewMetrics()

	m.SetShellState(1)
	m.RecordChunk("stdout", 10)
	m.RecordChunk("stdout", 5)
	m.SetListeners("output", 2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShellState))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShellChunks.WithLabelValues("stdout")))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.ShellBytes.WithLabelValues("stdout")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShellListeners.WithLabelValues("output")))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordFileOp("read", "success", 0)
		m.SetShellState(2)
		m.RecordChunk("stderr", 1)
		m.IncSurfaces()
		NewTimer(m, "list").Stop(nil)
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/ping", "200")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "bridge_http_requests_total"))
	assert.True(t, strings.Contains(body, "bridge_uptime_seconds"))
}
