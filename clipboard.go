package tapestry

import (
	"context"
	"fmt"

	"github.com/aretw0/tapestry/internal/clipboard"
	"github.com/aretw0/tapestry/pkg/domain"
)

// Copy places the induced subgraph of ids on the local clipboard and returns
// a copy of it. Edges with only one endpoint in ids are left out. When no id
// matches a node the clipboard keeps its previous content and nil is returned.
func (e *Editor) Copy(ids []string) *domain.ClipboardPayload {
	p := clipboard.Copy(e.store.Nodes(), e.store.Edges(), ids)
	if p == nil {
		return nil
	}
	e.clip = p
	return p.Clone()
}

// Clipboard returns a copy of the local clipboard, or nil when empty.
func (e *Editor) Clipboard() *domain.ClipboardPayload {
	return e.clip.Clone()
}

// Paste inserts the local clipboard with fresh ids. Nodes keep their
// relative layout: the clipboard's bounding-box origin lands on at, or the
// nodes are shifted by the paste offset when at is nil. The pasted nodes
// become the selection and the whole paste is one history entry.
// It returns the new node ids, or nil when the clipboard is empty.
func (e *Editor) Paste(at *domain.Position) []string {
	return e.PastePayload(e.clip, at)
}

// PastePayload pastes an externally sourced payload exactly like Paste.
func (e *Editor) PastePayload(p *domain.ClipboardPayload, at *domain.Position) []string {
	if p.Empty() {
		return nil
	}
	res := clipboard.Instantiate(p, e.ids, e.store.IDs(), at, e.pasteOffset)
	if err := e.store.Insert(res.Nodes, res.Edges); err != nil {
		e.logger.Error("paste rejected", "err", err)
		return nil
	}

	nodeIDs := res.NodeIDs()
	e.store.Select(nodeIDs...)
	e.emitMutation(domain.OpPaste, nodeIDs, res.EdgeIDs())
	e.Record()
	return nodeIDs
}

// ShareClipboard publishes the local clipboard to the shared store.
func (e *Editor) ShareClipboard(ctx context.Context) error {
	if e.clipStore == nil {
		return ErrNoClipboardStore
	}
	if e.clip.Empty() {
		return domain.ErrClipboardEmpty
	}
	if err := e.clipStore.Put(ctx, e.clipKey, e.clip); err != nil {
		return fmt.Errorf("share clipboard: %w", err)
	}
	return nil
}

// PasteShared pastes the payload held by the shared store.
func (e *Editor) PasteShared(ctx context.Context, at *domain.Position) ([]string, error) {
	if e.clipStore == nil {
		return nil, ErrNoClipboardStore
	}
	p, err := e.clipStore.Get(ctx, e.clipKey)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, domain.ErrClipboardEmpty
	}
	return e.PastePayload(p, at), nil
}
