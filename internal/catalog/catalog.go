// Package catalog is the movie graph's service layer: schema setup, chunked CSV
// ingestion and the analytic query surface, all on top of a graph.Store.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/moviegraph/internal/data/graph"
	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/observability"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

type Catalog struct {
	store   graph.Store
	log     *logger.Logger
	tracer  trace.Tracer
	metrics *observability.Metrics
}

type Option func(*Catalog)

// WithMetrics records ingestion and query metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

func New(store graph.Store, log *logger.Logger, opts ...Option) (*Catalog, error) {
	if store == nil {
		return nil, fmt.Errorf("catalog: store required")
	}
	if log == nil {
		return nil, fmt.Errorf("catalog: logger required")
	}
	c := &Catalog{
		store:  store,
		log:    log.With("service", "Catalog"),
		tracer: observability.Tracer("catalog"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Setup installs the natural-key constraints. Ingestion must not start if it fails.
func (c *Catalog) Setup(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "catalog.Setup")
	defer span.End()
	if err := c.store.EnsureSchema(ctx); err != nil {
		recordSpanError(span, err)
		return fmt.Errorf("catalog: setup: %w", err)
	}
	c.log.Info("graph schema ready")
	return nil
}

func (c *Catalog) Counts(ctx context.Context) (domain.GraphCounts, error) {
	return observe(ctx, c, "counts", func(ctx context.Context) (domain.GraphCounts, error) {
		return c.store.Counts(ctx)
	})
}

// IsEmpty reports whether the graph holds no nodes at all.
func (c *Catalog) IsEmpty(ctx context.Context) (bool, error) {
	counts, err := c.Counts(ctx)
	if err != nil {
		return false, err
	}
	return counts.Nodes == 0, nil
}

func (c *Catalog) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}

func observe[T any](ctx context.Context, c *Catalog, op string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := c.tracer.Start(ctx, "catalog."+op, trace.WithAttributes(attribute.String("catalog.op", op)))
	defer span.End()

	start := time.Now()
	out, err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		recordSpanError(span, err)
		err = fmt.Errorf("catalog: %s: %w", op, err)
	}
	c.metrics.ObserveQuery(op, status, time.Since(start))
	return out, err
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
