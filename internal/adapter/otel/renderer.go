package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/gestloc/internal/domain"
)

// TracingRenderer wraps a domain.DocumentRenderer with OpenTelemetry tracing.
type TracingRenderer struct {
	next   domain.DocumentRenderer
	tracer trace.Tracer
}

// Compile-time check: TracingRenderer implements domain.DocumentRenderer.
var _ domain.DocumentRenderer = (*TracingRenderer)(nil)

// NewTracingRenderer creates a tracing decorator around the given renderer.
func NewTracingRenderer(next domain.DocumentRenderer) *TracingRenderer {
	return &TracingRenderer{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
}

func (r *TracingRenderer) RenderContract(ctx context.Context, doc domain.ContractDocument) (string, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentRenderer.RenderContract",
		trace.WithAttributes(
			attribute.Int64("contract.id", doc.Contract.ID),
			attribute.String("contract.reference", doc.Contract.Reference),
		),
	)
	defer span.End()

	out, err := r.next.RenderContract(ctx, doc)
	recordError(span, err)
	return out, err
}

func (r *TracingRenderer) RenderInspection(ctx context.Context, doc domain.InspectionDocument) (string, error) {
	ctx, span := r.tracer.Start(ctx, "DocumentRenderer.RenderInspection",
		trace.WithAttributes(
			attribute.Int64("contract.id", doc.Contract.ID),
			attribute.Int64("inspection.id", doc.Inspection.ID),
			attribute.String("inspection.type", string(doc.Inspection.Type)),
			attribute.Int("inspection.photos", len(doc.Photos)),
		),
	)
	defer span.End()

	out, err := r.next.RenderInspection(ctx, doc)
	recordError(span, err)
	return out, err
}
