package handler

import (
	"net/http"
	"time"
	"virtual-env-server/internal/metrics"
	"virtual-env-server/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader carries the ID assigned to each request
const RequestIDHeader = "X-Request-Id"

// Recorder receives a record for every finished request
type Recorder interface {
	Record(rec models.RequestRecord)
}

// AccessLogHandler logs every request passing through to the next handler
type AccessLogHandler struct {
	next     http.Handler
	metrics  *metrics.Metrics
	logger   logrus.FieldLogger
	recorder Recorder
	now      func() time.Time
}

// NewAccessLogHandler creates an access log handler. recorder may be nil.
func NewAccessLogHandler(next http.Handler, metrics *metrics.Metrics, logger logrus.FieldLogger, recorder Recorder) *AccessLogHandler {
	return &AccessLogHandler{
		next:     next,
		metrics:  metrics,
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// ServeHTTP implements http.Handler
func (h *AccessLogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	id := uuid.NewString()
	w.Header().Set(RequestIDHeader, id)

	sw := &statusWriter{ResponseWriter: w}
	h.next.ServeHTTP(sw, r)

	rec := models.RequestRecord{
		ID:         id,
		Method:     r.Method,
		Path:       r.URL.Path,
		Status:     sw.Status(),
		Bytes:      sw.bytes,
		Duration:   h.now().Sub(start),
		RemoteAddr: r.RemoteAddr,
		CreatedAt:  start,
	}

	h.metrics.ObserveResponse(rec.Status, rec.Bytes)
	if h.recorder != nil {
		h.recorder.Record(rec)
	}

	entry := h.logger.WithFields(logrus.Fields{
		"request_id": rec.ID,
		"method":     rec.Method,
		"path":       rec.Path,
		"status":     rec.Status,
		"bytes":      rec.Bytes,
		"duration":   rec.Duration,
	})
	if rec.Class() == models.ClassError {
		entry.Warn("request failed")
		return
	}
	entry.Info("request served")
}
