package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Schema is a map of field names to their expected types.
// Example: {"url": String(), "retries": Number(), "tags": List(String())}
type Schema map[string]Type

// Validate checks if data conforms to the schema.
// Every schema field is required. Returns an error with all validation failures found.
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error
	for _, fieldName := range sortedKeys(schema) {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidatePartial validates only the fields present in data.
// Fields the schema does not describe are accepted, since property bags are open.
func ValidatePartial(schema Schema, data map[string]any) error {
	if len(schema) == 0 || len(data) == 0 {
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, fieldName := range keys {
		fieldType, defined := schema[fieldName]
		if !defined {
			continue
		}
		value := data[fieldName]
		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateVariable checks the variable name and that its value matches the declared type.
// A nil value is accepted for every type (declared but not yet assigned).
func ValidateVariable(v domain.Variable) error {
	if v.Name == "" {
		return &ValidationError{Key: "name", Reason: "variable name is empty"}
	}
	t, err := ForVariable(v.Type)
	if err != nil {
		return &ValidationError{Key: v.Name, Reason: err.Error(), Value: v.Type}
	}
	if v.Value == nil {
		return nil
	}
	if err := t.Validate(v.Value); err != nil {
		return &ValidationError{Key: v.Name, Reason: err.Error(), Value: v.Value}
	}
	return nil
}

// ValidateDocument checks the structural invariants of a document plus
// unique, well-typed variables.
func ValidateDocument(doc *domain.Document) error {
	if doc == nil {
		return &ValidationError{Key: "document", Reason: "document is nil"}
	}

	errs := structureErrors(doc)

	names := make(map[string]bool, len(doc.Variables))
	for _, v := range doc.Variables {
		if err := ValidateVariable(v); err != nil {
			errs = append(errs, err)
			continue
		}
		if names[v.Name] {
			errs = append(errs, &ValidationError{Key: v.Name, Reason: "duplicate variable name"})
		}
		names[v.Name] = true
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

// ValidateStructure checks the graph only: unique non-empty node ids, unique
// edge ids, no self-loops and no dangling edges. Variables are not inspected.
func ValidateStructure(doc *domain.Document) error {
	if doc == nil {
		return &ValidationError{Key: "document", Reason: "document is nil"}
	}
	if errs := structureErrors(doc); len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}

func structureErrors(doc *domain.Document) []error {
	var errs []error

	nodeIDs := make(map[string]bool, len(doc.Nodes))
	for i, n := range doc.Nodes {
		switch {
		case n.ID == "":
			errs = append(errs, &ValidationError{Key: fmt.Sprintf("nodes[%d].id", i), Reason: "empty node id"})
		case nodeIDs[n.ID]:
			errs = append(errs, &ValidationError{Key: n.ID, Reason: "duplicate node id"})
		}
		nodeIDs[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))
	for i, e := range doc.Edges {
		switch {
		case e.ID == "":
			errs = append(errs, &ValidationError{Key: fmt.Sprintf("edges[%d].id", i), Reason: "empty edge id"})
		case edgeIDs[e.ID]:
			errs = append(errs, &ValidationError{Key: e.ID, Reason: "duplicate edge id"})
		}
		edgeIDs[e.ID] = true

		if e.IsSelfLoop() {
			errs = append(errs, &ValidationError{Key: e.ID, Reason: "self-loop edge"})
			continue
		}
		if !nodeIDs[e.Source] {
			errs = append(errs, &ValidationError{Key: e.ID, Reason: fmt.Sprintf("source node '%s' does not exist", e.Source)})
		}
		if !nodeIDs[e.Target] {
			errs = append(errs, &ValidationError{Key: e.ID, Reason: fmt.Sprintf("target node '%s' does not exist", e.Target)})
		}
	}

	return errs
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
