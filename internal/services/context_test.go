package services_test

import (
	"context"
	"testing"

	"borgtool/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "sess-1")
	ctx = services.WithRepository(ctx, "local")

	if id, ok := services.SessionIDFromContext(ctx); !ok || id != "sess-1" {
		t.Fatalf("unexpected session id: %v %v", id, ok)
	}
	if repo, ok := services.RepositoryFromContext(ctx); !ok || repo != "local" {
		t.Fatalf("unexpected repository: %v %v", repo, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithSessionID(ctx, "")
	ctx = services.WithRepository(ctx, "")
	if _, ok := services.SessionIDFromContext(ctx); ok {
		t.Fatal("expected no session id")
	}
	if _, ok := services.RepositoryFromContext(ctx); ok {
		t.Fatal("expected no repository")
	}
}
