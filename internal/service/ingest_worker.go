package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openlibraryenvironment/dcb-clustering/internal/metrics"
	"github.com/openlibraryenvironment/dcb-clustering/internal/models"
)

// RecordProcessor handles a single ingest record end to end.
type RecordProcessor interface {
	Process(ctx context.Context, rec models.IngestRecord) (*models.BibRecord, error)
}

// IngestWorker processes ingest records asynchronously with retry.
type IngestWorker struct {
	ingest      RecordProcessor
	log         *logrus.Logger
	jobs        chan models.IngestRecord
	maxJobs     int
	concurrency int
}

// NewIngestWorker creates a worker with the given queue capacity and concurrency.
func NewIngestWorker(ingest RecordProcessor, log *logrus.Logger, queueSize, concurrency int) *IngestWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	return &IngestWorker{
		ingest:      ingest,
		log:         log,
		jobs:        make(chan models.IngestRecord, queueSize),
		maxJobs:     queueSize,
		concurrency: concurrency,
	}
}

// Enqueue adds an ingest record. Non-blocking; reports whether the record
// was accepted or dropped because the queue is full.
func (w *IngestWorker) Enqueue(rec *models.IngestRecord) bool {
	select {
	case w.jobs <- *rec:
		metrics.IngestQueueDepth.Set(float64(len(w.jobs)))
		return true
	default:
		w.log.WithFields(logrus.Fields{
			"source_system": rec.SourceSystemID,
			"source_record": rec.SourceRecordID,
		}).Warn("ingest queue full, dropping record")
		metrics.IngestOutcomes.WithLabelValues("dropped_queue").Inc()
		return false
	}
}

// QueueDepth reports the number of records waiting to be processed.
func (w *IngestWorker) QueueDepth() int {
	return len(w.jobs)
}

// Run spawns N worker goroutines and blocks until the context is cancelled
// and all workers have drained. Call in a goroutine.
func (w *IngestWorker) Run(ctx context.Context) {
	var wg sync.WaitGroup

	w.log.WithField("concurrency", w.concurrency).Info("starting ingest workers")

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.runWorker(ctx, id)
		}(i)
	}

	wg.Wait()
	w.log.Info("all ingest workers stopped")
}

func (w *IngestWorker) runWorker(ctx context.Context, id int) {
	w.log.WithField("worker_id", id).Debug("ingest worker started")
	for {
		select {
		case <-ctx.Done():
			return
		case rec := <-w.jobs:
			metrics.IngestQueueDepth.Set(float64(len(w.jobs)))
			w.processWithRetry(ctx, rec)
		}
	}
}

const (
	maxIngestRetries     = 3
	baseIngestRetryDelay = 2 * time.Second
)

func (w *IngestWorker) processWithRetry(ctx context.Context, rec models.IngestRecord) {
	for attempt := 0; attempt < maxIngestRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}

		_, err := w.ingest.Process(ctx, rec)
		if err == nil {
			return
		}

		w.log.WithError(err).WithFields(logrus.Fields{
			"source_system": rec.SourceSystemID,
			"source_record": rec.SourceRecordID,
			"attempt":       attempt + 1,
		}).Warn("ingest processing failed")

		if attempt < maxIngestRetries-1 {
			delay := baseIngestRetryDelay * (1 << attempt) // exponential backoff
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
	}

	metrics.IngestOutcomes.WithLabelValues("failed").Inc()
	w.log.WithFields(logrus.Fields{
		"source_system": rec.SourceSystemID,
		"source_record": rec.SourceRecordID,
	}).Error("ingest failed after all retries")
}
