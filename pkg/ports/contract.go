package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunClipboardStoreContract runs a suite of tests to verify that a ClipboardStore implementation
// adheres to the defined interface contract.
func RunClipboardStoreContract(t *testing.T, store ClipboardStore) {
	ctx := context.Background()
	key := "contract-test-clipboard-" + time.Now().Format("20060102150405")

	payload := &domain.ClipboardPayload{
		Nodes: []domain.Node{
			{ID: "a", Kind: "trigger", Position: domain.Position{X: 0, Y: 0}, Data: domain.PropertyBag{"url": "{site}"}},
			{ID: "b", Kind: "new-tab", Position: domain.Position{X: 100, Y: 0}},
		},
		Edges: []domain.Edge{{ID: "e1", Source: "a", Target: "b"}},
	}

	t.Run("Put and Get", func(t *testing.T) {
		err := store.Put(ctx, key, payload)
		require.NoError(t, err, "Put should not return error")

		loaded, err := store.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		require.Len(t, loaded.Nodes, 2)
		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, "a", loaded.Nodes[0].ID)
		assert.Equal(t, "{site}", loaded.Nodes[0].Data["url"])
		assert.Equal(t, 100.0, loaded.Nodes[1].Position.X)
		assert.Equal(t, payload.Edges[0], loaded.Edges[0])
	})

	t.Run("Get Is Isolated", func(t *testing.T) {
		loaded, err := store.Get(ctx, key)
		require.NoError(t, err)
		loaded.Nodes[0].Data["url"] = "mutated"

		again, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "{site}", again.Nodes[0].Data["url"], "callers must not be able to mutate stored payloads")
	})

	t.Run("Get Non-Existent", func(t *testing.T) {
		_, err := store.Get(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, domain.ErrClipboardEmpty)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, key, payload))

		err := store.Delete(ctx, key)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrClipboardEmpty, "Get after Delete should return ErrClipboardEmpty")
	})
}
