package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/gestloc/internal/app"
	"github.com/neomorfeo/gestloc/internal/domain"
)

func TestDocument_ContractPDF(t *testing.T) {
	f := newFixture(t)
	c := f.contract(t)
	svc := app.NewDocumentService(f.store, &fakeRenderer{}, time.Second)

	out, err := svc.ContractPDF(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ContractPDF failed: %v", err)
	}
	if out != "/tmp/contrat.pdf" {
		t.Errorf("path = %q, want %q", out, "/tmp/contrat.pdf")
	}
}

func TestDocument_RenderTimeout(t *testing.T) {
	f := newFixture(t)
	c := f.contract(t)
	svc := app.NewDocumentService(f.store, &fakeRenderer{delay: time.Second}, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.ContractPDF(context.Background(), c.ID)
	if !errors.Is(err, app.ErrRenderTimeout) {
		t.Fatalf("expected ErrRenderTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("render was not cut short: %v", elapsed)
	}
}

func TestDocument_InspectionPDF(t *testing.T) {
	f := newFixture(t)
	c := f.contract(t)
	ctx := context.Background()
	renderer := &fakeRenderer{}
	svc := app.NewDocumentService(f.store, renderer, time.Second)

	if _, err := svc.InspectionPDF(ctx, c.ID, domain.InspectionSortie); !errors.Is(err, domain.ErrInspectionNotFound) {
		t.Fatalf("no sortie yet: expected ErrInspectionNotFound, got %v", err)
	}

	inspection, err := f.records.AddInspection(ctx, c.ID, domain.InspectionSortie, time.Now(), "mur abime")
	if err != nil {
		t.Fatalf("AddInspection failed: %v", err)
	}

	if _, err := svc.InspectionPDF(ctx, c.ID, domain.InspectionSortie); err != nil {
		t.Fatalf("InspectionPDF failed: %v", err)
	}
	if len(renderer.docs) != 1 || renderer.docs[0].Inspection.ID != inspection.ID {
		t.Errorf("rendered docs = %+v, want inspection %d", renderer.docs, inspection.ID)
	}
}

func TestDocument_TrashedContractNotFound(t *testing.T) {
	f := newFixture(t)
	c := f.contract(t)
	ctx := context.Background()

	if _, err := f.contracts.SoftDelete(ctx, c.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	svc := app.NewDocumentService(f.store, &fakeRenderer{}, 0)
	if _, err := svc.ContractPDF(ctx, c.ID); !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("expected ErrContractNotFound, got %v", err)
	}
}
