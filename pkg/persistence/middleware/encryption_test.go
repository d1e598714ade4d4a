package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/tapestry/pkg/adapters/memory"
	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/persistence/middleware"
	"github.com/aretw0/tapestry/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func samplePayload(secret string) *domain.ClipboardPayload {
	return &domain.ClipboardPayload{
		Nodes: []domain.Node{
			{ID: "a", Kind: "http", Position: domain.Position{X: 10, Y: 20}, Data: domain.PropertyBag{"token": secret}},
			{ID: "b", Kind: "log"},
		},
		Edges: []domain.Edge{{ID: "ab", Source: "a", Target: "b"}},
	}
}

func sealed(t *testing.T, cfg middleware.EncryptionConfig, next ports.ClipboardStore) ports.ClipboardStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	if err != nil {
		t.Fatalf("NewEncryptionMiddleware failed: %v", err)
	}
	return mw(next)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	ctx := context.Background()

	if err := secure.Put(ctx, "slot", samplePayload("my-secret-sauce")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// The underlying store only holds the envelope.
	stored, err := underlying.Get(ctx, "slot")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}
	if len(stored.Nodes) != 1 || stored.Nodes[0].Kind != middleware.EnvelopeKind {
		t.Fatalf("Expected a single envelope node, got %+v", stored.Nodes)
	}
	if len(stored.Edges) != 0 {
		t.Errorf("Expected edges to be hidden, got %d", len(stored.Edges))
	}
	if _, ok := stored.Nodes[0].Data[middleware.EnvelopeField]; !ok {
		t.Fatal("Expected encrypted field in envelope")
	}

	loaded, err := secure.Get(ctx, "slot")
	if err != nil {
		t.Fatalf("Get via middleware failed: %v", err)
	}
	if len(loaded.Nodes) != 2 || len(loaded.Edges) != 1 {
		t.Fatalf("Unexpected payload shape: %+v", loaded)
	}
	if got, _ := loaded.Nodes[0].Data.String("token"); got != "my-secret-sauce" {
		t.Errorf("Expected 'my-secret-sauce', got %v", got)
	}
	if loaded.Nodes[0].Position != (domain.Position{X: 10, Y: 20}) {
		t.Errorf("Position lost: %+v", loaded.Nodes[0].Position)
	}
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureOld := sealed(t, middleware.EncryptionConfig{ActiveKey: oldKey}, underlying)
	if err := secureOld.Put(ctx, "slot", samplePayload("old")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	secureNew := sealed(t, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	}, underlying)

	loaded, err := secureNew.Get(ctx, "slot")
	if err != nil {
		t.Fatalf("Get with rotated key failed: %v", err)
	}
	if got, _ := loaded.Nodes[0].Data.String("token"); got != "old" {
		t.Errorf("Decryption with fallback key failed, got %q", got)
	}

	if err := secureNew.Put(ctx, "slot", samplePayload("new")); err != nil {
		t.Fatalf("Put with new key failed: %v", err)
	}
	if _, err := secureOld.Get(ctx, "slot"); err == nil {
		t.Error("Expected failure when reading new-key payload with old-key middleware")
	}
}

func TestEncryptionMiddleware_PlainPayloadRejected(t *testing.T) {
	underlying := memory.NewStore()
	if err := underlying.Put(context.Background(), "slot", samplePayload("plain")); err != nil {
		t.Fatal(err)
	}

	secure := sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, underlying)
	if _, err := secure.Get(context.Background(), "slot"); err == nil {
		t.Error("Expected plain payload to be rejected")
	}
}

func TestEncryptionMiddleware_EmptyPassesThrough(t *testing.T) {
	secure := sealed(t, middleware.EncryptionConfig{ActiveKey: generateKey(t)}, memory.NewStore())
	_, err := secure.Get(context.Background(), "missing")
	if !errors.Is(err, domain.ErrClipboardEmpty) {
		t.Errorf("Expected ErrClipboardEmpty, got %v", err)
	}
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	if !errors.Is(err, middleware.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("ParseKey failed: %v", err)
	}
	if string(got) != string(key) {
		t.Error("ParseKey returned a different key")
	}

	if _, err := middleware.ParseKey("not base64!"); err == nil {
		t.Error("Expected decode error")
	}
	if _, err := middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, middleware.ErrInvalidKey) {
		t.Errorf("Expected ErrInvalidKey, got %v", err)
	}
}
