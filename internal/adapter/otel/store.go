package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/gestloc/internal/domain"
)

const tracerName = "github.com/neomorfeo/gestloc/internal/adapter/otel"

// TracingStore wraps a domain.Store so each business transaction gets a span.
// Individual statements are traced below it by otelsql.
type TracingStore struct {
	domain.Store
	tracer trace.Tracer
}

// Compile-time check: TracingStore implements domain.Store.
var _ domain.Store = (*TracingStore)(nil)

// NewTracingStore creates a tracing decorator around the given store.
func NewTracingStore(next domain.Store) *TracingStore {
	return &TracingStore{
		Store:  next,
		tracer: otel.Tracer(tracerName),
	}
}

func (s *TracingStore) InTx(ctx context.Context, fn func(domain.Repositories) error) error {
	ctx, span := s.tracer.Start(ctx, "Store.InTx")
	defer span.End()

	if actor := domain.ActorFrom(ctx); actor.IP != "" {
		span.SetAttributes(attribute.String("actor.ip", actor.IP))
	}

	err := s.Store.InTx(ctx, fn)
	recordError(span, err)
	return err
}

func recordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
