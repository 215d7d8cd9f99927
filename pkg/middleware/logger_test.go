package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type logRecorder struct {
	mu       sync.Mutex
	messages []ectologger.EctoLogMessage
}

func (r *logRecorder) record(msg ectologger.EctoLogMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *logRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func newLoggedEcho(recorder *logRecorder) *echo.Echo {
	e := echo.New()
	e.Use(Context())
	e.Use(Logger(ectologger.NewEctoLogger(recorder.record)))
	return e
}

func TestLoggerEmitsOneLinePerRequest(t *testing.T) {
	recorder := &logRecorder{}
	e := newLoggedEcho(recorder)
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderUserID, "u-1")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 3, recorder.count())
}

func TestLoggerLogsFailedRequests(t *testing.T) {
	recorder := &logRecorder{}
	e := newLoggedEcho(recorder)
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, "upstream down")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, 1, recorder.count())
}
