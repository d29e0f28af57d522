// Package worker implements the buffered worker pool pattern for async match ingestion.
// This decouples HTTP request handling from database writes, providing:
// - Backpressure handling via load shedding
// - Batch inserts for efficient ClickHouse writes
// - Graceful shutdown with flush guarantees

package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/sumo-yosou/predict-api/internal/models"
)

// Prometheus metrics
var (
	matchesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_matches_ingested_total",
		Help: "Total number of match results accepted into the queue",
	})

	matchesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_matches_processed_total",
		Help: "Total number of match results written by workers",
	})

	matchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_matches_failed_total",
		Help: "Total number of match results that failed processing",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sumo_worker_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sumo_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	matchesLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_matches_load_shed_total",
		Help: "Total number of match results dropped due to load shedding",
	})

	recordCounterFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_record_counter_failures_total",
		Help: "Stored match results whose record counters could not be updated",
	})
)

// RecordApplier updates derived per-rikishi counters once matches are stored
type RecordApplier interface {
	Apply(ctx context.Context, matches []models.MatchResult) error
}

// Job represents a unit of work for the worker pool
type Job struct {
	Match     models.MatchResult
	Timestamp time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Records       RecordApplier // optional
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async match ingestion
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger

	mu      sync.RWMutex
	stopped bool
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue and waits for workers to flush what is left
func (p *Pool) Stop() {
	p.logger.Info("Stopping worker pool...")

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.logger.Info("Worker pool stopped")
}

// Enqueue adds a match to the queue without blocking. It returns false and
// sheds the match when the queue is full or the pool has stopped.
func (p *Pool) Enqueue(match models.MatchResult) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		matchesLoadShed.Inc()
		return false
	}

	select {
	case p.jobQueue <- Job{Match: match, Timestamp: time.Now()}:
		matchesIngested.Inc()
		return true
	default:
		matchesLoadShed.Inc()
		p.logger.Warnw("Worker queue full, dropping match", "match_id", match.MatchID)
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		if err := p.processBatch(batch); err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			matchesFailed.Add(float64(len(batch)))
		} else {
			p.logger.Debugw("Batch processed", "worker", id, "batchSize", len(batch), "duration", time.Since(start))
			matchesProcessed.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				// Channel closed, flush remaining
				flush()
				return
			}

			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()
		}
	}
}

// processBatch writes a batch to ClickHouse, then updates the record
// counters for the rows that were sent.
func (p *Pool) processBatch(batch []Job) error {
	if len(batch) == 0 {
		return nil
	}

	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO sumo.match_results (
			match_id, winner_id, loser_id, tournament, day, kimarite, timestamp
		)
	`)
	if err != nil {
		return err
	}

	sent := make([]models.MatchResult, 0, len(batch))
	for _, job := range batch {
		m := job.Match
		err := chBatch.Append(
			m.MatchID,
			m.WinnerID,
			m.LoserID,
			m.Tournament,
			uint8(m.Day),
			m.Kimarite,
			m.Timestamp,
		)
		if err != nil {
			p.logger.Warnw("Failed to append match to batch", "error", err, "match_id", m.MatchID)
			continue
		}
		sent = append(sent, m)
	}

	if err := chBatch.Send(); err != nil {
		p.logger.Errorw("Failed to send batch to ClickHouse", "error", err, "batchSize", len(batch))
		return err
	}

	if p.config.Records != nil {
		if err := p.config.Records.Apply(ctx, sent); err != nil {
			// Existing counters now lag ClickHouse and are still served on read
			// until the rikishi:*:record keys are rebuilt.
			recordCounterFailures.Add(float64(len(sent)))
			p.logger.Errorw("Failed to update record counters", "error", err, "count", len(sent))
		}
	}

	return nil
}

// reportQueueDepth periodically updates the queue depth metric
func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
