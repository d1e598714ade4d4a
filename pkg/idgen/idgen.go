// Package idgen provides ports.IDGenerator implementations.
package idgen

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/aretw0/tapestry/pkg/ports"
)

// Formats accepted by New.
const (
	FormatULID = "ulid"
	FormatUUID = "uuid"
)

// ULID generates lexically sortable identifiers.
type ULID struct{}

// NewULID returns the default generator.
func NewULID() ULID { return ULID{} }

// Next returns a new ULID string. ulid.Make is monotonic within a millisecond
// and safe for concurrent use.
func (ULID) Next() string {
	return ulid.Make().String()
}

// UUID generates random (v4) identifiers.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() UUID { return UUID{} }

// Next returns a new random UUID string.
func (UUID) Next() string {
	return uuid.NewString()
}

// Sequence produces predictable identifiers ("n1", "n2", ...). Meant for tests.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence creates a Sequence with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier of the sequence.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s%d", s.prefix, s.n.Add(1))
}

// New returns the generator for a configured format name.
func New(format string) (ports.IDGenerator, error) {
	switch strings.ToLower(format) {
	case "", FormatULID:
		return NewULID(), nil
	case FormatUUID:
		return NewUUID(), nil
	default:
		return nil, fmt.Errorf("unknown id format: %s", format)
	}
}
