package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNodeNotFound is returned when a node ID does not exist in the document.
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when an edge ID does not exist in the document.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrVariableNotFound is returned when a variable name does not exist.
	ErrVariableNotFound = errors.New("variable not found")

	// ErrVariableExists is returned when a rename would collide with an existing variable.
	ErrVariableExists = errors.New("variable already exists")

	// ErrInvalidName is returned for empty variable or document names.
	ErrInvalidName = errors.New("invalid name")

	// ErrUnsupportedValue is returned when a property value is outside the supported variants.
	ErrUnsupportedValue = errors.New("unsupported property value")

	// ErrClipboardEmpty is returned when pasting with nothing copied.
	ErrClipboardEmpty = errors.New("clipboard is empty")

	// ErrSelfLoop is the sentinel matched by SelfLoopError.
	ErrSelfLoop = errors.New("self-loop edge rejected")

	// ErrMalformedDocument is the sentinel matched by MalformedDocumentError.
	ErrMalformedDocument = errors.New("malformed document")
)

// SelfLoopError is returned by connect when source and target are the same node.
type SelfLoopError struct {
	NodeID string
}

func (e *SelfLoopError) Error() string {
	return fmt.Sprintf("cannot connect node '%s' to itself", e.NodeID)
}

// Is makes errors.Is(err, ErrSelfLoop) hold.
func (e *SelfLoopError) Is(target error) bool {
	return target == ErrSelfLoop
}

// MalformedDocumentError describes an import payload that cannot be used.
type MalformedDocumentError struct {
	Missing []string // required top-level keys that are absent
	Err     error    // underlying decode or validation failure
}

func (e *MalformedDocumentError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}
	if len(parts) == 0 {
		return ErrMalformedDocument.Error()
	}
	return fmt.Sprintf("%s: %s", ErrMalformedDocument, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrMalformedDocument) hold.
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}
