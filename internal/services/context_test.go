package services_test

import (
	"context"
	"testing"

	"playbridge/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-1")
	ctx = services.WithStep(ctx, "expand")
	ctx = services.WithPlaylist(ctx, "Faves")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if step, ok := services.StepFromContext(ctx); !ok || step != "expand" {
		t.Fatalf("unexpected step: %v %v", step, ok)
	}
	if name, ok := services.PlaylistFromContext(ctx); !ok || name != "Faves" {
		t.Fatalf("unexpected playlist: %v %v", name, ok)
	}
}

func TestStepBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStep(ctx, "")
	if _, ok := services.StepFromContext(ctx); ok {
		t.Fatal("expected blank step to be ignored")
	}
}
