package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/tapestry/pkg/adapters/memory"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/persistence/middleware"
)

func TestRedactMiddleware_Masking(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewRedactMiddleware([]string{"password", "(?i)token"})
	if err != nil {
		t.Fatalf("NewRedactMiddleware failed: %v", err)
	}
	store := mw(underlying)
	ctx := context.Background()

	payload := &domain.ClipboardPayload{
		Nodes: []domain.Node{{
			ID:   "a",
			Kind: "http",
			Data: domain.PropertyBag{
				"url":           "https://example.com",
				"user_password": "secret123",
				"headers": map[string]any{
					"Accept":    "application/json",
					"AuthToken": "abc",
				},
				"steps": []any{map[string]any{"password": "x"}},
			},
		}},
	}

	if err := store.Put(ctx, "slot", payload); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if payload.Nodes[0].Data["user_password"] != "secret123" {
		t.Error("Middleware modified the caller's payload")
	}

	stored, err := underlying.Get(ctx, "slot")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	data := stored.Nodes[0].Data
	if data["url"] != "https://example.com" {
		t.Error("url shouldn't be masked")
	}
	if data["user_password"] != middleware.Mask {
		t.Errorf("Password should be masked, got: %v", data["user_password"])
	}
	headers := data["headers"].(map[string]any)
	if headers["AuthToken"] != middleware.Mask {
		t.Errorf("Nested token should be masked, got: %v", headers["AuthToken"])
	}
	if headers["Accept"] != "application/json" {
		t.Error("Accept header shouldn't be masked")
	}
	step := data["steps"].([]any)[0].(map[string]any)
	if step["password"] != middleware.Mask {
		t.Errorf("Password inside list should be masked, got: %v", step["password"])
	}
}

func TestRedactMiddleware_InvalidPattern(t *testing.T) {
	if _, err := middleware.NewRedactMiddleware([]string{"("}); err == nil {
		t.Error("Expected invalid pattern error")
	}
}

func TestChain_OrderRedactsBeforeSealing(t *testing.T) {
	underlying := memory.NewStore()
	redact, err := middleware.NewRedactMiddleware([]string{"secret"})
	if err != nil {
		t.Fatal(err)
	}
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	if err != nil {
		t.Fatal(err)
	}
	store := middleware.Chain(underlying, redact, seal)
	ctx := context.Background()

	payload := &domain.ClipboardPayload{Nodes: []domain.Node{{ID: "a", Kind: "k", Data: domain.PropertyBag{"secret": "s"}}}}
	if err := store.Put(ctx, "slot", payload); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, "slot")
	if err != nil {
		t.Fatal(err)
	}
	if got.Nodes[0].Data["secret"] != middleware.Mask {
		t.Errorf("Expected masked value after roundtrip, got %v", got.Nodes[0].Data["secret"])
	}
}
