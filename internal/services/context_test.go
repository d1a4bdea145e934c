package services_test

import (
	"context"
	"testing"

	"expertstats/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithStep(ctx, "task:pending")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "task:pending" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
}

func TestStepBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStep(ctx, "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected no step value")
	}
	if _, ok := services.RunIDFromContext(services.WithRunID(ctx, "")); ok {
		t.Fatal("expected no run id value")
	}
}
