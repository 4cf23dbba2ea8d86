package otel_test

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	adapter "github.com/neomorfeo/gestloc/internal/adapter/otel"
)

func TestSetup_StdoutExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "stdout",
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	if err := providers.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestSetup_InvalidExporter(t *testing.T) {
	_, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "invalid",
	})
	if err == nil {
		t.Fatal("expected error for invalid exporter")
	}
}

func TestNewResource_Attributes(t *testing.T) {
	res, err := adapter.NewResource(context.Background(), adapter.Config{
		ServiceName:    "gestloc",
		ServiceVersion: "0.1.0",
		Environment:    "production",
		PublicBaseURL:  "https://gestion.example.com",
	})
	if err != nil {
		t.Fatalf("NewResource failed: %v", err)
	}

	want := map[attribute.Key]string{
		semconv.ServiceNameKey:           "gestloc",
		semconv.ServiceVersionKey:        "0.1.0",
		semconv.DeploymentEnvironmentKey: "production",
		adapter.PublicBaseURLKey:         "https://gestion.example.com",
	}
	for key, value := range want {
		got, ok := res.Set().Value(key)
		if !ok {
			t.Errorf("resource has no %s", key)
			continue
		}
		if got.AsString() != value {
			t.Errorf("%s = %q, want %q", key, got.AsString(), value)
		}
	}
}

func TestNewResource_EnvironmentOverrides(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "gestloc-staging")
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment=staging")

	res, err := adapter.NewResource(context.Background(), adapter.Config{
		ServiceName: "gestloc",
		Environment: "development",
	})
	if err != nil {
		t.Fatalf("NewResource failed: %v", err)
	}

	if got, _ := res.Set().Value(semconv.ServiceNameKey); got.AsString() != "gestloc-staging" {
		t.Errorf("service.name = %q, want %q", got.AsString(), "gestloc-staging")
	}
	if got, _ := res.Set().Value(semconv.DeploymentEnvironmentKey); got.AsString() != "staging" {
		t.Errorf("deployment.environment = %q, want %q", got.AsString(), "staging")
	}
	if _, ok := res.Set().Value(adapter.PublicBaseURLKey); ok {
		t.Error("gestloc.public_base_url should be absent without a base URL")
	}
}

func TestSetup_NoneExporter(t *testing.T) {
	providers, err := adapter.Setup(context.Background(), adapter.Config{
		ServiceName:    "test",
		ServiceVersion: "0.0.1",
		Environment:    "test",
		Exporter:       "none",
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := providers.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestOpenDB_AppliesPragmas(t *testing.T) {
	db, err := adapter.OpenDB(t.TempDir() + "/gestloc.db")
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatal(err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}
