// Package schema validates the typed parts of a workflow document.
//
// It defines the small type system used by workflow variables (string, number,
// boolean, list, object, any) and by optional per-kind property schemas. A
// Schema maps field names to types:
//
//	s := schema.Schema{
//	    "url":     schema.String(),
//	    "retries": schema.Number(),
//	    "tags":    schema.List(schema.String()),
//	}
//
//	if err := schema.ValidatePartial(s, node.Data); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas can also be parsed from type names ("string", "[number]", ...) and
// serialized to JSON or YAML.
//
// ValidateDocument checks the structural invariants of a whole document
// (unique ids, edges between existing distinct nodes, unique and well-typed
// variables) and reports every violation at once in an AggregateError.
// ValidateStructure performs only the graph checks; replace-import uses it so
// that variables travel as-is.
package schema
