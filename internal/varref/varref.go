// Package varref finds and rewrites {name} and {name[index]} placeholders
// inside node property bags.
package varref

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Usage is one field that references a variable.
// Field is a path into the property bag, e.g. "url" or "headers[0].value".
type Usage struct {
	NodeID   string `json:"node_id"`
	Field    string `json:"field"`
	RawValue string `json:"raw_value"`
}

// Change is the rewritten value of one top-level property of a node.
type Change struct {
	NodeID string
	Key    string
	Value  any
	// Fields counts the string fields under Key that were rewritten.
	Fields int
}

// Pattern returns the placeholder matcher for name. The character right after
// the name must be '}' or '[', so "count" does not match "{count2}".
func Pattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\{` + regexp.QuoteMeta(name) + `(\[[^\]]*\])?\}`)
}

// ValidName reports whether name can appear inside a placeholder.
func ValidName(name string) bool {
	return name != "" && !strings.ContainsAny(name, "{}[]")
}

// FindUsages reports every string field, at any depth, that contains at least
// one placeholder for name. A field is reported once regardless of how many
// placeholders it holds.
func FindUsages(nodes []domain.Node, name string) []Usage {
	if name == "" {
		return nil
	}
	re := Pattern(name)

	var out []Usage
	for _, n := range nodes {
		for _, key := range sortedKeys(n.Data) {
			walk(n.Data[key], key, func(path, s string) (string, bool) {
				if re.MatchString(s) {
					out = append(out, Usage{NodeID: n.ID, Field: path, RawValue: s})
				}
				return s, false
			})
		}
	}
	return out
}

// Rewrite replaces every placeholder for oldName with the same placeholder
// for newName, keeping any [index] suffix byte for byte. Only top-level
// properties that actually changed are returned; untouched values are never
// copied.
func Rewrite(nodes []domain.Node, oldName, newName string) []Change {
	if oldName == "" || oldName == newName {
		return nil
	}
	re := Pattern(oldName)
	prefix := "{" + oldName
	replace := func(m string) string {
		return "{" + newName + m[len(prefix):]
	}

	var out []Change
	for _, n := range nodes {
		for _, key := range sortedKeys(n.Data) {
			fields := 0
			v, changed := walk(n.Data[key], key, func(_ string, s string) (string, bool) {
				if !re.MatchString(s) {
					return s, false
				}
				fields++
				return re.ReplaceAllStringFunc(s, replace), true
			})
			if changed {
				out = append(out, Change{NodeID: n.ID, Key: key, Value: v, Fields: fields})
			}
		}
	}
	return out
}

// walk visits every string reachable from v. visit may return a replacement;
// containers along a changed path are copied, all others are returned as is.
func walk(v any, path string, visit func(path, s string) (string, bool)) (any, bool) {
	switch x := v.(type) {
	case string:
		return visit(path, x)
	case map[string]any:
		var out map[string]any
		for _, k := range sortedKeys(x) {
			nv, changed := walk(x[k], path+"."+k, visit)
			if !changed {
				continue
			}
			if out == nil {
				out = make(map[string]any, len(x))
				for kk, vv := range x {
					out[kk] = vv
				}
			}
			out[k] = nv
		}
		if out == nil {
			return v, false
		}
		return out, true
	case domain.PropertyBag:
		nv, changed := walk(map[string]any(x), path, visit)
		return nv, changed
	case []any:
		var out []any
		for i, item := range x {
			nv, changed := walk(item, path+"["+strconv.Itoa(i)+"]", visit)
			if !changed {
				continue
			}
			if out == nil {
				out = make([]any, len(x))
				copy(out, x)
			}
			out[i] = nv
		}
		if out == nil {
			return v, false
		}
		return out, true
	default:
		return v, false
	}
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
