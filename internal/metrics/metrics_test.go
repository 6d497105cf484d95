package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRequest("GET", "/todos", 200, 15*time.Millisecond)
	c.ObserveRequest("GET", "/todos", 200, 5*time.Millisecond)
	c.ObserveRequest("GET", "/todos", 401, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/todos", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues("GET", "/todos", "401")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.latency))
}

func TestCollector_AuthCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthFailure("token_invalid")
	c.RecordAuthFailure("token_invalid")
	c.RecordAuthFailure("bad_credentials")
	c.RecordTokenIssued()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.authFailures.WithLabelValues("token_invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.authFailures.WithLabelValues("bad_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.tokensIssued))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordTokenIssued()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "todolist_tokens_issued_total 1"))
}

func TestNewCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	assert.Panics(t, func() { NewCollector(reg) })
}

func TestNop_DiscardsObservations(t *testing.T) {
	var rec Recorder = Nop{}
	assert.NotPanics(t, func() {
		rec.ObserveRequest("GET", "/", 200, time.Millisecond)
		rec.RecordAuthFailure("token_invalid")
		rec.RecordTokenIssued()
	})
}
