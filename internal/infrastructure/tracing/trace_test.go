package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedTracer(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("test", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestStartSpanNesting(t *testing.T) {
	tracer, _ := newObservedTracer(t)

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, root.TraceID, GetTraceID(ctx))
	assert.Equal(t, root.SpanID, GetSpanID(ctx))

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
}

func TestWithRemote(t *testing.T) {
	ctx := WithRemote(context.Background(), "trace-1", "span-1")
	assert.Equal(t, TraceID("trace-1"), GetTraceID(ctx))
	assert.Equal(t, SpanID("span-1"), GetSpanID(ctx))

	ctx = WithRemote(context.Background(), "", "")
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetSpanID(ctx))
}

func TestSubmitLogsSpan(t *testing.T) {
	tracer, logs := newObservedTracer(t)

	span, _ := tracer.StartSpan(context.Background(), "read-file")
	span.SetError(errors.New("boom"))
	span.Finish()
	tracer.Submit(span)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed with error").Len() == 1
	}, time.Second, 5*time.Millisecond)

	entry := logs.FilterMessage("span completed with error").All()[0]
	assert.Equal(t, "read-file", entry.ContextMap()["operation"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer, _ := newObservedTracer(t)
	tracer.Close()
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	assert.NotPanics(t, func() { tracer.Submit(span) })
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObservedTracer(t)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))

	var seen TraceID
	router.GET("/files/:name", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/files/a.txt", nil)
	req.Header.Set(HeaderTraceID, "incoming-trace")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, TraceID("incoming-trace"), seen)
	assert.Equal(t, "incoming-trace", w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	require.Eventually(t, func() bool {
		return logs.FilterMessage("span completed").Len() == 1
	}, time.Second, 5*time.Millisecond)

	fields := logs.FilterMessage("span completed").All()[0].ContextMap()
	assert.Equal(t, "GET /files/:name", fields["operation"])
	assert.Equal(t, "418", fields["http.status"])
}
