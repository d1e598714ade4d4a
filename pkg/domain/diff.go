package domain

// SnapshotDiff summarizes the changes between two snapshots.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`
	ChangedNodes []string `json:"changed_nodes,omitempty"`
	AddedEdges   []string `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`

	// DocumentName is set only when the name changed.
	DocumentName *string `json:"document_name,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, every node and edge of newSnap is reported as added.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}
	if oldSnap == nil {
		oldSnap = &Snapshot{}
	}

	diff := &SnapshotDiff{}

	oldNodes := make(map[string]Node, len(oldSnap.Nodes))
	for _, n := range oldSnap.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]bool, len(newSnap.Nodes))
	for _, n := range newSnap.Nodes {
		newNodes[n.ID] = true
		prev, exists := oldNodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		case !prev.SameContent(n):
			diff.ChangedNodes = append(diff.ChangedNodes, n.ID)
		}
	}
	for _, n := range oldSnap.Nodes {
		if !newNodes[n.ID] {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := make(map[string]bool, len(oldSnap.Edges))
	for _, e := range oldSnap.Edges {
		oldEdges[e.ID] = true
	}
	newEdges := make(map[string]bool, len(newSnap.Edges))
	for _, e := range newSnap.Edges {
		newEdges[e.ID] = true
		if !oldEdges[e.ID] {
			diff.AddedEdges = append(diff.AddedEdges, e.ID)
		}
	}
	for _, e := range oldSnap.Edges {
		if !newEdges[e.ID] {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	if oldSnap.DocumentName != newSnap.DocumentName {
		name := newSnap.DocumentName
		diff.DocumentName = &name
	}

	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d == nil || (len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		d.DocumentName == nil)
}
