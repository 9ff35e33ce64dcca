package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/ping", ok)
	r.POST("/ping", ok)
	return r
}

func do(r http.Handler, method, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/ping", strings.NewReader(body))
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newEngine(RateLimit(1, time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestDeduplication(t *testing.T) {
	r := newEngine(Deduplication(time.Minute))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"ingredients":"egg"}`).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, http.MethodPost, `{"ingredients":"egg"}`).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, `{"ingredients":"rice"}`).Code)

	// GET 不去重
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "").Code)
}

func TestDeduplicatorWindowExpires(t *testing.T) {
	d := NewDeduplicator(time.Second)
	now := time.Now()

	assert.False(t, d.seen("k", now))
	assert.True(t, d.seen("k", now.Add(500*time.Millisecond)))
	assert.False(t, d.seen("k", now.Add(3*time.Second)))
}

func TestBodySizeLimit(t *testing.T) {
	r := newEngine(BodySizeLimit(8))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "small").Code)
	w := do(r, http.MethodPost, "this body is too large")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")

	// 沒有 Content-Length 時讀取超過上限會失敗
	chunked := gin.New()
	chunked.Use(BodySizeLimit(8))
	chunked.POST("/ping", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader("this body is too large"))
	req.ContentLength = -1
	w = httptest.NewRecorder()
	chunked.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(20 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), "GATEWAY_TIMEOUT")
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prevLogger, prevMode := common.Logger, common.LogMode
	common.Logger, common.LogMode = zap.New(core), ""
	t.Cleanup(func() { common.Logger, common.LogMode = prevLogger, prevMode })
	return logs
}

func TestLoggerRecordsRunAndJob(t *testing.T) {
	logs := observeLogs(t)

	r := gin.New()
	r.Use(requestid.New(), Logger())
	r.POST("/jobs", func(c *gin.Context) {
		c.Set(ContextJobID, "job-1")
		c.Set(ContextRunID, "run-1")
		c.Status(http.StatusAccepted)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/jobs", nil))
	require.Equal(t, http.StatusAccepted, w.Code)

	entries := logs.FilterMessage("請求完成").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "job-1", fields["job_id"])
	assert.Equal(t, "run-1", fields["run_id"])
	assert.Equal(t, w.Header().Get("X-Request-ID"), fields["request_id"])
	assert.EqualValues(t, http.StatusAccepted, fields["status"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	warn := logs.FilterMessage("用戶端錯誤").All()
	require.Len(t, warn, 1)
	assert.Equal(t, zapcore.WarnLevel, warn[0].Level)
	assert.NotContains(t, warn[0].ContextMap(), "job_id")
}
