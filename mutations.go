package tapestry

import (
	"errors"
	"fmt"

	"github.com/aretw0/tapestry/pkg/domain"
)

// OnChange is the per-field edit used by module forms. It does not record
// history; the canvas calls Record when the field loses focus.
func (e *Editor) OnChange(nodeID, key string, value any) error {
	return e.UpdateNodeData(nodeID, domain.PropertyBag{key: value})
}

// UpdateNodeData merges partial into the node's property bag without
// recording history. Fields are checked against the kind schema when a
// registry is configured.
func (e *Editor) UpdateNodeData(nodeID string, partial domain.PropertyBag) error {
	if e.registry != nil {
		n, ok := e.store.Node(nodeID)
		if !ok {
			return fmt.Errorf("%w: %s", domain.ErrNodeNotFound, nodeID)
		}
		if err := e.registry.Validate(n.Kind, partial); err != nil {
			return fmt.Errorf("node %s: %w", nodeID, err)
		}
	}
	if err := e.store.UpdateNodeData(nodeID, partial); err != nil {
		return err
	}
	e.emitMutation(domain.OpUpdateNode, []string{nodeID}, nil)
	return nil
}

// AddNode appends a node of the given kind, seeded with the registry defaults,
// and records history.
func (e *Editor) AddNode(kind string, pos domain.Position) (domain.Node, error) {
	var data domain.PropertyBag
	if e.registry != nil {
		data = e.registry.Defaults(kind)
	}
	n, err := e.store.AddNode(kind, pos, data)
	if err != nil {
		return domain.Node{}, fmt.Errorf("add %s node: %w", kind, err)
	}
	e.emitMutation(domain.OpAddNode, []string{n.ID}, nil)
	e.Record()
	return n, nil
}

// MoveNode repositions a node. Drags emit many moves; history is recorded
// by the caller on drag end.
func (e *Editor) MoveNode(nodeID string, pos domain.Position) error {
	if err := e.store.SetPosition(nodeID, pos); err != nil {
		return err
	}
	e.emitMutation(domain.OpMoveNode, []string{nodeID}, nil)
	return nil
}

// DeleteNode removes a node and its incident edges, and records history.
func (e *Editor) DeleteNode(id string) error {
	edges, err := e.store.DeleteNode(id)
	if err != nil {
		return err
	}
	e.emitMutation(domain.OpDeleteNode, []string{id}, edges)
	e.Record()
	return nil
}

// DeleteSelection removes every selected node as one undoable step.
// It returns the number of removed nodes.
func (e *Editor) DeleteSelection() int {
	nodes, edges := e.store.DeleteNodes(e.store.Selected())
	if len(nodes) == 0 {
		return 0
	}
	e.emitMutation(domain.OpDeleteNode, nodes, edges)
	e.Record()
	return len(nodes)
}

// Connect adds an edge from source to target and records history.
// A self-loop is rejected with *domain.SelfLoopError; nothing changes and no
// history entry is created.
func (e *Editor) Connect(source, target string) (domain.Edge, error) {
	edge, err := e.store.Connect(source, target)
	if err != nil {
		if errors.Is(err, domain.ErrSelfLoop) {
			e.logger.Warn("self-loop rejected", "node", source)
		}
		return domain.Edge{}, err
	}
	e.emitMutation(domain.OpConnect, nil, []string{edge.ID})
	e.Record()
	return edge, nil
}

// Disconnect removes an edge and records history.
func (e *Editor) Disconnect(edgeID string) error {
	if err := e.store.Disconnect(edgeID); err != nil {
		return err
	}
	e.emitMutation(domain.OpDisconnect, nil, []string{edgeID})
	e.Record()
	return nil
}

// Select marks exactly ids as selected. Selection is part of snapshots but
// changing it does not record history.
func (e *Editor) Select(ids ...string) {
	e.store.Select(ids...)
}

// Selected returns the selected node ids in document order.
func (e *Editor) Selected() []string {
	return e.store.Selected()
}

// Rename sets the document name and records history.
func (e *Editor) Rename(name string) {
	e.store.SetName(name)
	e.emitMutation(domain.OpRenameDocument, nil, nil)
	e.Record()
}
