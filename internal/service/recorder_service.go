package service

import (
	"context"
	"sync"
	"virtual-env-server/internal/metrics"
	"virtual-env-server/internal/models"
	"virtual-env-server/internal/repository"

	"github.com/sirupsen/logrus"
)

// DefaultQueueSize is the number of records buffered between requests and the writer
const DefaultQueueSize = 256

// RecorderService writes access-log records to the repository from a
// single background goroutine. Record never blocks the request path.
type RecorderService struct {
	repo    repository.RequestRepository
	metrics *metrics.Metrics
	logger  logrus.FieldLogger

	mu     sync.RWMutex
	closed bool
	queue  chan *models.RequestRecord
}

// NewRecorderService creates a new recorder service
func NewRecorderService(repo repository.RequestRepository, metrics *metrics.Metrics, logger logrus.FieldLogger, queueSize int) *RecorderService {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &RecorderService{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		queue:   make(chan *models.RequestRecord, queueSize),
	}
}

// Record queues rec for writing. When the queue is full or the service
// is closed the record is dropped and counted.
func (s *RecorderService) Record(rec models.RequestRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		s.metrics.IncrementDroppedRecords()
		return
	}

	select {
	case s.queue <- &rec:
	default:
		s.metrics.IncrementDroppedRecords()
		s.logger.WithField("request_id", rec.ID).Debug("access log queue full, record dropped")
	}
}

// Run writes queued records until Close is called and the queue is
// drained, or ctx is cancelled.
func (s *RecorderService) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rec, ok := <-s.queue:
			if !ok {
				return nil
			}
			s.save(ctx, rec)
		}
	}
}

// Close stops accepting records. Records already queued are still
// written by Run.
func (s *RecorderService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.queue)
}

func (s *RecorderService) save(ctx context.Context, rec *models.RequestRecord) {
	if err := s.repo.SaveRequest(ctx, rec); err != nil {
		s.logger.WithError(err).WithField("request_id", rec.ID).Warn("error saving access record")
	}
}
