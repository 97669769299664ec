package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dmallory42/semchunk/internal/chunker"
	"github.com/dmallory42/semchunk/internal/config"
	"github.com/dmallory42/semchunk/internal/index"
)

// Orchestrator manages the document chunking pipeline.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	builder *chunker.Builder
	idx     *index.Client // nil when no downstream index is configured
	log     *slog.Logger
	cfg     config.Config
	stats   *RunStats

	// Content-hash dedup across this process's lifetime.
	seenMu sync.Mutex
	seen   map[string]string // content hash -> doc ID

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch workers.
func NewOrchestrator(cfg config.Config, builder *chunker.Builder, idx *index.Client, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		builder: builder,
		idx:     idx,
		log:     log,
		cfg:     cfg,
		stats:   NewRunStats(time.Hour),
		seen:    make(map[string]string),
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for i := 0; i < o.cfg.WorkerCount; i++ {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o, o.idx, o.log, o.builder, o.cfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats exposes chunking-run latency stats for the API layer.
func (o *Orchestrator) Stats() *RunStats {
	return o.stats
}

// IndexClient returns the downstream index client, or nil.
func (o *Orchestrator) IndexClient() *index.Client {
	return o.idx
}

// markSeen records a content hash and returns the doc ID of a previous
// document with the same hash, if any.
func (o *Orchestrator) markSeen(hash, docID string) (string, bool) {
	o.seenMu.Lock()
	defer o.seenMu.Unlock()
	if existing, ok := o.seen[hash]; ok {
		return existing, true
	}
	o.seen[hash] = docID
	return "", false
}
