package ingest

import (
	"context"
	"errors"
	"sync"

	"github.com/docuchat/docuchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Scheduler runs the ingestion pipeline on a bounded worker pool so uploads
// never block on ingestion and concurrent ingestions cannot exhaust the
// process. Dispatch is non-blocking: a full backlog rejects the job and the
// document stays unprocessed. Completion is observed by polling document
// status.
type Scheduler struct {
	pipeline *Pipeline
	jobs     chan string
	wg       sync.WaitGroup

	mu      sync.Mutex
	stopped bool

	logger *zap.Logger
}

func NewScheduler(pipeline *Pipeline, workers, queueSize int, logger *zap.Logger) *Scheduler {
	s := &Scheduler{
		pipeline: pipeline,
		jobs:     make(chan string, queueSize),
		logger:   logger,
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	logger.Info("ingestion scheduler started",
		zap.Int("workers", workers),
		zap.Int("queue_size", queueSize),
	)

	return s
}

// Dispatch enqueues one document for ingestion. At most one dispatch per
// upload event; the caller returns before ingestion completes.
func (s *Scheduler) Dispatch(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return entity.ErrSchedulerStopped
	}

	select {
	case s.jobs <- documentID:
		return nil
	default:
		s.logger.Warn("ingestion queue full, rejecting dispatch",
			zap.String("document_id", documentID),
		)
		return entity.ErrIngestQueueFull
	}
}

// Stop drains the backlog and waits for in-flight ingestions to finish.
// Dispatched jobs are never cancelled mid-run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.jobs)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info("ingestion scheduler stopped")
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for documentID := range s.jobs {
		// Detached from the triggering request: background context with a
		// request-independent logger
		ctx := ctxzap.ToContext(context.Background(), s.logger.With(
			zap.Int("worker", id),
			zap.String("action", "Ingest"),
		))

		err := s.pipeline.Run(ctx, documentID)
		if errors.Is(err, entity.ErrAlreadyProcessed) {
			continue
		}
		if err != nil {
			s.logger.Error("ingestion failed",
				zap.Int("worker", id),
				zap.String("document_id", documentID),
				zap.Error(err),
			)
		}
	}
}
