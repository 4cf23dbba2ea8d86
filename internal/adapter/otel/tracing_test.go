package otel_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/gestloc/internal/adapter/otel"
	"github.com/neomorfeo/gestloc/internal/adapter/sqlite"
	"github.com/neomorfeo/gestloc/internal/domain"
)

// --- Test tracer setup ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func assertAttribute(t *testing.T, span tracetest.SpanStub, key string, want attribute.Value) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			if attr.Value != want {
				t.Errorf("attribute %q = %v, want %v", key, attr.Value.Emit(), want.Emit())
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}

// --- Fakes ---

type recordingNotifier struct {
	sent []domain.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg domain.Notification) error {
	n.sent = append(n.sent, msg)
	return n.err
}

type stubRenderer struct {
	err error
}

func (r stubRenderer) RenderContract(context.Context, domain.ContractDocument) (string, error) {
	return "/tmp/contrat.pdf", r.err
}

func (r stubRenderer) RenderInspection(context.Context, domain.InspectionDocument) (string, error) {
	return "/tmp/etat.pdf", r.err
}

// --- Store ---

func TestTracingStore_InTx(t *testing.T) {
	exporter := setupTestTracer(t)

	inner, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { inner.Close() })
	store := adapter.NewTracingStore(inner)

	ctx := domain.WithActor(context.Background(), domain.Actor{IP: "198.51.100.7"})
	err = store.InTx(ctx, func(repos domain.Repositories) error {
		l := domain.NewLogement("LOG-1", "5 rue Neuve", 50000, 0)
		return repos.Logements().Create(ctx, &l)
	})
	if err != nil {
		t.Fatalf("InTx failed: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "Store.InTx" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "Store.InTx")
	}
	assertAttribute(t, spans[0], "actor.ip", attribute.StringValue("198.51.100.7"))

	if _, err := store.Logements().GetByID(context.Background(), 1); err != nil {
		t.Errorf("logement should be committed through the wrapped store: %v", err)
	}
}

func TestTracingStore_InTx_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)

	inner, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { inner.Close() })
	store := adapter.NewTracingStore(inner)

	err = store.InTx(context.Background(), func(domain.Repositories) error {
		return domain.ErrContractNotFound
	})
	if !errors.Is(err, domain.ErrContractNotFound) {
		t.Fatalf("expected ErrContractNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}

// --- Notifier ---

func TestTracingNotifier_Notify(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &recordingNotifier{}
	notifier := adapter.NewTracingNotifier(inner)

	err := notifier.Notify(context.Background(), domain.Notification{
		Template:  domain.TemplateCandidatureAcceptee,
		To:        []string{"marie@example.com"},
		BCCAdmins: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "Notifier.Notify" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "Notifier.Notify")
	}
	assertAttribute(t, spans[0], "notification.template", attribute.StringValue("candidature_acceptee"))
	assertAttribute(t, spans[0], "notification.recipients", attribute.IntValue(1))
	assertAttribute(t, spans[0], "notification.bcc_admins", attribute.BoolValue(true))

	if len(inner.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(inner.sent))
	}
}

func TestTracingNotifier_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	notifier := adapter.NewTracingNotifier(&recordingNotifier{err: errors.New("queue unavailable")})

	if err := notifier.Notify(context.Background(), domain.Notification{Template: "x"}); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}

// --- Renderer ---

func TestTracingRenderer(t *testing.T) {
	exporter := setupTestTracer(t)
	renderer := adapter.NewTracingRenderer(stubRenderer{})

	contract := domain.Contract{ID: 7, Reference: "CTR-0000000A"}
	if _, err := renderer.RenderContract(context.Background(), domain.ContractDocument{Contract: contract}); err != nil {
		t.Fatal(err)
	}
	_, err := renderer.RenderInspection(context.Background(), domain.InspectionDocument{
		Contract:   contract,
		Inspection: domain.Inspection{ID: 3, Type: domain.InspectionSortie},
		Photos:     make([]domain.Photo, 2),
	})
	if err != nil {
		t.Fatal(err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	assertAttribute(t, spans[0], "contract.reference", attribute.StringValue("CTR-0000000A"))
	assertAttribute(t, spans[1], "inspection.type", attribute.StringValue("sortie"))
	assertAttribute(t, spans[1], "inspection.photos", attribute.IntValue(2))
}

func TestTracingRenderer_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	renderer := adapter.NewTracingRenderer(stubRenderer{err: context.DeadlineExceeded})

	if _, err := renderer.RenderContract(context.Background(), domain.ContractDocument{}); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Errorf("spans = %d, want one error span", len(spans))
	}
}
