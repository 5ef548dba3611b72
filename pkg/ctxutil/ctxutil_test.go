package ctxutil

import (
	"context"
	"testing"
)

func TestActorID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if _, ok := ActorIDFromCtx(ctx); ok {
		t.Error("expected no actor id on empty context")
	}

	ctx = WithActorID(ctx, "user-123")
	id, ok := ActorIDFromCtx(ctx)
	if !ok || id != "user-123" {
		t.Errorf("got (%q, %v), want (user-123, true)", id, ok)
	}

	if _, ok := ActorIDFromCtx(WithActorID(context.Background(), "")); ok {
		t.Error("empty actor id should report absent")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Errorf("got %q, want empty", got)
	}

	ctx := WithRequestID(context.Background(), "scan-42")
	if got := RequestIDFromCtx(ctx); got != "scan-42" {
		t.Errorf("got %q, want scan-42", got)
	}
}
