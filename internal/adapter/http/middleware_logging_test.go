package adapthttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"mealtracker/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	s := &Server{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("OK"))
	})

	hook := test.NewGlobal()
	defer hook.Reset()

	w := httptest.NewRecorder()
	s.loggingMiddleware(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test-path", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, http.MethodGet, entry.Data["method"])
	assert.Equal(t, "/test-path", entry.Data["path"])
	assert.Equal(t, http.StatusTeapot, entry.Data["status"])
}

func TestRecovery(t *testing.T) {
	m := metrics.NewTestManager()
	s := &Server{opts: Options{Metrics: m}}
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	hook := test.NewGlobal()
	defer hook.Reset()

	w := httptest.NewRecorder()
	s.recovery(boom).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/entries", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, w.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterHandleRequestPanic))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestInstrumentWithoutMetrics(t *testing.T) {
	s := &Server{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

	w := httptest.NewRecorder()
	s.instrument("/x", next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthMiddlewareDisabledUsesDefaultUser(t *testing.T) {
	s := New(Services{}, Options{AuthDisabled: true, DefaultUserID: 7})
	var got int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { got = userID(r) })

	s.authMiddleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, int64(7), got)
}
