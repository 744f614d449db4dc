package worker

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumenter traces and measures background jobs.
type Instrumenter struct {
	tracer      trace.Tracer
	meter       metric.Meter
	prefix      string
	jobsActive  metric.Int64UpDownCounter
	jobDuration metric.Float64Histogram
	jobsTotal   metric.Int64Counter
	queueWait   metric.Float64Histogram
}

// NewInstrumenter registers the job instruments under colormuse_<serviceName>_*.
func NewInstrumenter(tracer trace.Tracer, meter metric.Meter, serviceName string) (*Instrumenter, error) {
	prefix := fmt.Sprintf("colormuse_%s", serviceName)

	jobsActive, err := meter.Int64UpDownCounter(
		prefix+"_jobs_active",
		metric.WithDescription("Number of jobs currently running"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		prefix+"_job_duration_seconds",
		metric.WithDescription("Background job duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	jobsTotal, err := meter.Int64Counter(
		prefix+"_jobs_total",
		metric.WithDescription("Total background jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	queueWait, err := meter.Float64Histogram(
		prefix+"_job_queue_wait_seconds",
		metric.WithDescription("Time a job spent queued before a worker picked it up"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Instrumenter{
		tracer:      tracer,
		meter:       meter,
		prefix:      prefix,
		jobsActive:  jobsActive,
		jobDuration: jobDuration,
		jobsTotal:   jobsTotal,
		queueWait:   queueWait,
	}, nil
}

// ObserveQueue exports depth as an asynchronous gauge.
func (w *Instrumenter) ObserveQueue(depth func() int) error {
	_, err := w.meter.Int64ObservableGauge(
		w.prefix+"_queue_depth",
		metric.WithDescription("Jobs waiting for a worker"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(depth()))
			return nil
		}),
	)
	return err
}

// RecordQueueWait records how long a job waited since enqueuedAt.
func (w *Instrumenter) RecordQueueWait(ctx context.Context, jobType string, enqueuedAt time.Time) {
	if enqueuedAt.IsZero() {
		return
	}
	w.queueWait.Record(ctx, time.Since(enqueuedAt).Seconds(),
		metric.WithAttributes(attribute.String("job.type", jobType)))
}

// InstrumentJob wraps a job execution with a span and duration metrics.
func (w *Instrumenter) InstrumentJob(ctx context.Context, jobType string, jobID string, fn func(context.Context) error) error {
	w.jobsActive.Add(ctx, 1)
	defer w.jobsActive.Add(ctx, -1)

	ctx, span := w.tracer.Start(ctx, fmt.Sprintf("worker.%s", jobType),
		trace.WithAttributes(
			attribute.String("job.type", jobType),
			attribute.String("job.id", jobID),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	status := "success"
	if err != nil {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	attrs := metric.WithAttributes(
		attribute.String("job.type", jobType),
		attribute.String("status", status),
	)
	w.jobDuration.Record(ctx, duration, attrs)
	w.jobsTotal.Add(ctx, 1, attrs)

	return err
}
