package tapestry

import (
	"github.com/aretw0/tapestry/internal/merge"
	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
)

// Load replaces the live document with the serialized one (JSON or YAML,
// auto-detected) and resets history to a single entry. It returns false when
// the payload is malformed; the live document is then left untouched and the
// cause is logged.
func (e *Editor) Load(data []byte) bool {
	doc, err := codec.Decode(data, "")
	if err != nil {
		e.logger.Warn("import rejected", "err", err)
		return false
	}
	if err := e.LoadDocument(doc); err != nil {
		e.logger.Warn("import rejected", "err", err)
		return false
	}
	return true
}

// LoadDocument is Load for an already decoded document.
func (e *Editor) LoadDocument(doc *domain.Document) error {
	if err := merge.Replace(e.store, doc); err != nil {
		return err
	}
	e.resetHistory()
	e.emitMutation(domain.OpLoad, nil, nil)
	e.logger.Info("document loaded",
		"name", e.store.Name(),
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
	)
	return nil
}

// Merge splices a serialized document into the live one with fresh ids,
// shifted so its bounding-box origin lands on at (unshifted when at is nil).
// Incoming variables whose name already exists are dropped. The merge is one
// history entry. It returns false when the payload is malformed.
func (e *Editor) Merge(data []byte, at *domain.Position) bool {
	doc, err := codec.Decode(data, "")
	if err != nil {
		e.logger.Warn("merge rejected", "err", err)
		return false
	}
	if _, err := e.MergeDocument(doc, at); err != nil {
		e.logger.Warn("merge rejected", "err", err)
		return false
	}
	return true
}

// MergeDocument is Merge for an already decoded document.
func (e *Editor) MergeDocument(doc *domain.Document, at *domain.Position) (MergeReport, error) {
	rep, err := merge.Merge(e.store, doc, e.ids, at)
	if err != nil {
		return MergeReport{}, err
	}
	if len(rep.DroppedVariables) > 0 {
		e.logger.Warn("merge dropped variables already defined", "variables", rep.DroppedVariables)
	}
	if len(rep.DroppedEdges) > 0 {
		e.logger.Warn("merge dropped invalid edges", "edges", rep.DroppedEdges)
	}
	e.emitMutation(domain.OpMerge, rep.Nodes, rep.Edges)
	e.Record()
	e.logger.Info("document merged", "nodes", len(rep.Nodes), "edges", len(rep.Edges))
	return rep, nil
}

// Export serializes the live document.
func (e *Editor) Export(format codec.Format) ([]byte, error) {
	return codec.Encode(e.store.Document(), format)
}
