package ports

import (
	"context"

	"github.com/aretw0/tapestry/pkg/domain"
)

// ClipboardStore holds copied subgraphs under a key so that another editor
// (another tab, another replica) can paste them.
type ClipboardStore interface {
	// Put stores a copy of the payload under key, replacing any previous one.
	Put(ctx context.Context, key string, payload *domain.ClipboardPayload) error

	// Get returns the payload stored under key.
	// Returns domain.ErrClipboardEmpty if nothing is stored.
	Get(ctx context.Context, key string) (*domain.ClipboardPayload, error)

	// Delete removes the payload stored under key.
	Delete(ctx context.Context, key string) error
}
