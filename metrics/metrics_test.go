package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStorageOperation(t *testing.T) {
	m, err := New("stowage", "")
	require.NoError(t, err)

	m.RecordStorageOperation("write", "file-data", nil, 5*time.Millisecond)
	m.RecordStorageOperation("write", "file-data", nil, time.Millisecond)
	m.RecordStorageOperation("write", "file-data", errors.New("disk full"), time.Millisecond)

	success := m.storageOperations.WithLabelValues("write", "file-data", "success")
	failure := m.storageOperations.WithLabelValues("write", "file-data", "error")
	assert.Equal(t, float64(2), testutil.ToFloat64(success))
	assert.Equal(t, float64(1), testutil.ToFloat64(failure))
}

func TestMetricsEndpoint(t *testing.T) {
	m, err := New("stowage", "")
	require.NoError(t, err)

	m.RecordStorageOperation("read", "object-bucket", nil, 2*time.Millisecond)

	w := httptest.NewRecorder()
	m.srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	resp := w.Result()
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), "stowage_storage_operations_total")
	assert.Contains(t, string(body), `backend="object-bucket"`)
	assert.Contains(t, string(body), "stowage_storage_operation_duration_seconds")
	// Process-wide collectors are registered too
	assert.Contains(t, string(body), "go_goroutines")
}

func TestInstrumentHandler(t *testing.T) {
	m, err := New("stowage", "")
	require.NoError(t, err)

	wrapped := m.InstrumentHandler("test_handler", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		wrapped(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	counter := m.httpRequests.WithLabelValues("test_handler", "200", "get")
	assert.Equal(t, float64(3), testutil.ToFloat64(counter))
}

func TestListenAndServe_RequiresAddr(t *testing.T) {
	m, err := New("stowage", "")
	require.NoError(t, err)

	assert.Error(t, m.ListenAndServe())
}
