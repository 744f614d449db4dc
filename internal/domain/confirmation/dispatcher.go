package confirmation

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config contains dispatcher configuration.
type Config struct {
	WorkerCount int
	QueueSize   int
	JobTimeout  time.Duration
}

type queueWaitRecorder interface {
	RecordQueueWait(ctx context.Context, jobType string, enqueuedAt time.Time)
}

// Dispatcher runs confirmation jobs on a fixed pool of workers fed by a
// buffered queue. Enqueue never blocks.
type Dispatcher struct {
	processor    *Processor
	instrumenter Instrumenter
	cfg          Config
	log          zerolog.Logger

	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool
	results func(Job, *Result, error)
}

// NewDispatcher creates a dispatcher. A nil instrumenter runs jobs unwrapped.
func NewDispatcher(processor *Processor, instrumenter Instrumenter, cfg Config, log zerolog.Logger) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}
	if instrumenter == nil {
		instrumenter = passthrough{}
	}
	return &Dispatcher{
		processor:    processor,
		instrumenter: instrumenter,
		cfg:          cfg,
		log:          log.With().Str("component", "confirmation_dispatcher").Logger(),
		jobs:         make(chan Job, cfg.QueueSize),
	}
}

// OnResult registers a callback invoked after every processed job.
// It must be set before Start.
func (d *Dispatcher) OnResult(fn func(Job, *Result, error)) {
	d.results = fn
}

// Enqueue hands a job to the workers.
func (d *Dispatcher) Enqueue(_ context.Context, job Job) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	select {
	case d.jobs <- job:
		return nil
	default:
		d.log.Error().Str("reference", job.Reference()).Int("queue_size", d.cfg.QueueSize).Msg("confirmation queue full, dropping job")
		return ErrQueueFull
	}
}

// QueueDepth returns the number of jobs waiting for a worker.
func (d *Dispatcher) QueueDepth() int {
	return len(d.jobs)
}

// Start launches the workers. They exit once Stop drains the queue.
// ctx is the parent of every job context.
func (d *Dispatcher) Start(ctx context.Context) {
	d.log.Info().Int("worker_count", d.cfg.WorkerCount).Int("queue_size", d.cfg.QueueSize).Msg("starting confirmation workers")
	for i := 0; i < d.cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.work(ctx, id)
		}(i + 1)
	}
}

// Stop refuses new jobs, lets the workers finish the queued ones and waits
// until they exit or ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info().Msg("confirmation workers stopped gracefully")
		return nil
	case <-ctx.Done():
		d.log.Warn().Int("pending", len(d.jobs)).Msg("confirmation worker shutdown timed out")
		return ctx.Err()
	}
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	log := d.log.With().Int("worker_id", id).Logger()
	for job := range d.jobs {
		d.run(ctx, log, job)
	}
	log.Debug().Msg("worker exited")
}

func (d *Dispatcher) run(parent context.Context, log zerolog.Logger, job Job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), d.cfg.JobTimeout)
	defer cancel()

	if rec, ok := d.instrumenter.(queueWaitRecorder); ok {
		rec.RecordQueueWait(ctx, jobType, job.EnqueuedAt)
	}

	var res *Result
	err := d.instrumenter.InstrumentJob(ctx, jobType, job.Reference(), func(ctx context.Context) error {
		var err error
		res, err = d.processor.Process(ctx, job)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("reference", job.Reference()).Dur("queued_for", time.Since(job.EnqueuedAt)).Msg("confirmation job failed")
	}
	if d.results != nil {
		d.results(job, res, err)
	}
}
