package metrics

import (
	"net/http"
	"sync"
)

// Metrics tracks request counters for the static server
type Metrics struct {
	mu sync.RWMutex

	totalRequests    int64
	okRequests       int64
	notFoundRequests int64
	errorRequests    int64
	bytesServed      int64
	droppedRecords   int64
}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncrementDroppedRecords counts access records the recorder could not queue
func (m *Metrics) IncrementDroppedRecords() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.droppedRecords++
}

// ObserveResponse counts one finished request by its status class
func (m *Metrics) ObserveResponse(status int, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalRequests++
	m.bytesServed += bytes
	switch {
	case status == http.StatusNotFound:
		m.notFoundRequests++
	case status >= http.StatusBadRequest:
		m.errorRequests++
	default:
		m.okRequests++
	}
}

// GetSnapshot returns a snapshot of all metrics
func (m *Metrics) GetSnapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]int64{
		"total_requests":     m.totalRequests,
		"ok_requests":        m.okRequests,
		"not_found_requests": m.notFoundRequests,
		"error_requests":     m.errorRequests,
		"bytes_served":       m.bytesServed,
		"dropped_records":    m.droppedRecords,
	}
}
