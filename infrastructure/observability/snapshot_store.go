package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"stackecho/application/ports"
)

const tracerName = "stackecho/snapshots"

// InstrumentedStore records metrics and spans for every call on a
// snapshot store.
type InstrumentedStore struct {
	next      ports.SnapshotStore
	backend   string
	collector *Collector
	tracer    trace.Tracer
}

// Instrument wraps next. backend labels the series, e.g. "sqlite".
func Instrument(next ports.SnapshotStore, backend string, collector *Collector) *InstrumentedStore {
	return &InstrumentedStore{
		next:      next,
		backend:   backend,
		collector: collector,
		tracer:    otel.Tracer(tracerName),
	}
}

// Load implements ports.SnapshotStore.
func (s *InstrumentedStore) Load(ctx context.Context, key string) (*ports.Snapshot, error) {
	var snap *ports.Snapshot
	err := s.observe(ctx, "load", key, func(ctx context.Context) error {
		var err error
		snap, err = s.next.Load(ctx, key)
		return err
	})
	return snap, err
}

// Save implements ports.SnapshotStore.
func (s *InstrumentedStore) Save(ctx context.Context, key string, snapshot *ports.Snapshot) error {
	return s.observe(ctx, "save", key, func(ctx context.Context) error {
		return s.next.Save(ctx, key, snapshot)
	})
}

// Delete implements ports.SnapshotStore.
func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	return s.observe(ctx, "delete", key, func(ctx context.Context) error {
		return s.next.Delete(ctx, key)
	})
}

func (s *InstrumentedStore) observe(ctx context.Context, op, key string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "snapshot."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("snapshot.backend", s.backend),
			attribute.String("snapshot.key", key),
		),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start).Seconds()

	status := statusOf(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	if s.collector != nil {
		s.collector.SnapshotOps.WithLabelValues(op, s.backend, status).Inc()
		s.collector.SnapshotDuration.WithLabelValues(op, s.backend).Observe(elapsed)
	}
	return err
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ports.ErrCorruptSnapshot):
		return "corrupt"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "error"
	}
}

var _ ports.SnapshotStore = (*InstrumentedStore)(nil)
