package ports

// IDGenerator produces unique identifiers.
// Implementations must never return the same value twice for one generator.
type IDGenerator interface {
	Next() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// Next calls f.
func (f IDGeneratorFunc) Next() string {
	return f()
}
