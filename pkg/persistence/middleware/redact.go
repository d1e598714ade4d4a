package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/tapestry/pkg/domain"
	"github.com/aretw0/tapestry/pkg/ports"
)

// Mask replaces every redacted value.
const Mask = "***"

type redactMiddleware struct {
	next     ports.ClipboardStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks node properties whose key
// matches one of the patterns before a payload leaves the editor.
// Nested maps and lists are walked.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.ClipboardStore) ports.ClipboardStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Put(ctx context.Context, key string, payload *domain.ClipboardPayload) error {
	// The caller keeps using its payload; mask a copy.
	cloned := payload.Clone()
	if cloned != nil {
		for i := range cloned.Nodes {
			maskMap(cloned.Nodes[i].Data, m.patterns)
		}
	}
	return m.next.Put(ctx, key, cloned)
}

func (m *redactMiddleware) Get(ctx context.Context, key string) (*domain.ClipboardPayload, error) {
	return m.next.Get(ctx, key)
}

func (m *redactMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		maskValue(v, patterns)
	}
}

func maskValue(v any, patterns []*regexp.Regexp) {
	switch t := v.(type) {
	case map[string]any:
		maskMap(t, patterns)
	case domain.PropertyBag:
		maskMap(t, patterns)
	case []any:
		for _, item := range t {
			maskValue(item, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
