/*
Package tapestry is the document/graph state engine behind a visual workflow builder.

An Editor owns one workflow document (nodes, edges, variables) and everything needed
to edit it safely: bounded undo/redo history, multi-node copy/paste with identifier
remapping, whole-document import and merge, and rewriting of {variable} placeholders
across every node's property bag.

# Concept

Module forms, the canvas and the automation runtime are collaborators. Forms write
fields through OnChange, the canvas calls the structural mutators (AddNode, Connect,
DeleteNode, Paste...), and the runtime pushes execution logs and preview rows into
bounded sinks. The editor never blocks and never retries.

# Key Features

  - Bounded History: up to 50 deep snapshots, idempotent Record, linear undo/redo.
  - Induced Copy/Paste: only edges with both endpoints selected travel; pasted ids are always fresh.
  - Collision-free Merge: imported fragments are re-identified and offset; existing variables win.
  - Placeholder Rename: {name} and {name[index]} references are rewritten in place, at any depth.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/tapestry"
		"github.com/aretw0/tapestry/pkg/domain"
	)

	func main() {
		ed := tapestry.New()

		a, _ := ed.AddNode("http", domain.Position{X: 0, Y: 0})
		b, _ := ed.AddNode("log", domain.Position{X: 100, Y: 0})
		_, _ = ed.Connect(a.ID, b.ID)

		ed.Copy([]string{a.ID, b.ID})
		pasted := ed.Paste(&domain.Position{X: 500, Y: 500})
		fmt.Println(len(pasted)) // 2

		ed.Undo() // removes the pasted nodes
	}
*/
package tapestry
