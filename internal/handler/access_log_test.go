package handler

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"virtual-env-server/internal/metrics"
	"virtual-env-server/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	mu      sync.Mutex
	records []models.RequestRecord
}

func (f *fakeRecorder) Record(rec models.RequestRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
}

func TestAccessLogHandler_ServedRequest(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := metrics.NewMetrics()
	rec := &fakeRecorder{}
	h := NewAccessLogHandler(NewStatic(newSiteDir(t)), m, logger, rec)

	start := time.Unix(1700000000, 0)
	calls := 0
	h.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 15 * time.Millisecond)
	}

	res := serve(h, http.MethodGet, "/")

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assertCORS(t, res.Header)
	id := res.Header.Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	require.NoError(t, err)

	require.Len(t, rec.records, 1)
	got := rec.records[0]
	assert.Equal(t, id, got.ID)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/", got.Path)
	assert.Equal(t, http.StatusOK, got.Status)
	assert.Equal(t, int64(len(landingBody)), got.Bytes)
	assert.Equal(t, 15*time.Millisecond, got.Duration)
	assert.Equal(t, start, got.CreatedAt)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "request served", entry.Message)
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])

	snapshot := m.GetSnapshot()
	assert.Equal(t, int64(1), snapshot["total_requests"])
	assert.Equal(t, int64(1), snapshot["ok_requests"])
	assert.Equal(t, int64(len(landingBody)), snapshot["bytes_served"])
}

func TestAccessLogHandler_NotFound(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := metrics.NewMetrics()
	h := NewAccessLogHandler(NewStatic(newSiteDir(t)), m, logger, nil)

	res := serve(h, http.MethodGet, "/missing.txt")

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assertCORS(t, res.Header)
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(1), m.GetSnapshot()["not_found_requests"])
}

func TestAccessLogHandler_ErrorStatusLogsWarning(t *testing.T) {
	logger, hook := test.NewNullLogger()
	m := metrics.NewMetrics()
	base := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	h := NewAccessLogHandler(base, m, logger, nil)

	res := serve(h, http.MethodGet, "/x")

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, int64(1), m.GetSnapshot()["error_requests"])
}

func TestAccessLogHandler_UniqueRequestIDs(t *testing.T) {
	logger, _ := test.NewNullLogger()
	rec := &fakeRecorder{}
	h := NewAccessLogHandler(NewStatic(newSiteDir(t)), metrics.NewMetrics(), logger, rec)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app.js", nil))
		id := w.Header().Get(RequestIDHeader)
		assert.False(t, seen[id], "duplicate request id %s", id)
		seen[id] = true
	}
	assert.Len(t, rec.records, 10)
}
