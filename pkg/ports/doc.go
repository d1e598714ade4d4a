/*
Package ports defines the driven ports (interfaces) of the Tapestry editor.

These interfaces decouple the document engine from external implementations,
so identifier generation, clipboard sharing and cross-instance locking can be
swapped for tests or for distributed deployments.

# Key Interfaces

  - IDGenerator: produces collision-free identifiers for nodes, edges and documents.
  - ClipboardStore: shares a copied subgraph between editor instances (memory or Redis).
  - DistributedLocker: coordinates access to one editor session across replicas.
*/
package ports
