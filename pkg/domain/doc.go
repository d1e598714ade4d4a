/*
Package domain contains the core data model of a Tapestry workflow document.

It defines the entities the editor engine operates on: Nodes, Edges, Variables,
the Document that groups them, and the Snapshot used for undo/redo. This package
is kept pure and free of I/O, following the same hexagonal layout as the rest of
the module.

# Key Entities

  - Node: one step of the workflow (a module or a structural block) with a position and a property bag.
  - Edge: a directed connection between two node identifiers.
  - Variable: a named, typed value that node fields reference with {name} placeholders.
  - Document: the unit of import, export and merge.
  - Snapshot: a deep copy of nodes, edges and the document name at one point in time.
*/
package domain
