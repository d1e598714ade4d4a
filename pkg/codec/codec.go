// Package codec reads and writes the workflow document wire format.
//
// A document is {id, name, nodes[], edges[], variables[], createdAt, updatedAt}
// where every node is {id, type, position, data}. Structural kinds travel
// under their own type tags (see WireTag); module nodes use their kind.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/tapestry/pkg/domain"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml". An empty string means auto-detect.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// FormatFromPath picks the format by file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// DetectFormat sniffs data: a leading '{' or '[' means JSON, anything else YAML.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return JSON
	}
	return YAML
}

type wireNode struct {
	ID       string          `json:"id" yaml:"id" mapstructure:"id"`
	Type     string          `json:"type" yaml:"type" mapstructure:"type"`
	Kind     string          `json:"-" yaml:"-" mapstructure:"kind"`
	Position domain.Position `json:"position" yaml:"position" mapstructure:"position"`
	Data     map[string]any  `json:"data" yaml:"data" mapstructure:"data"`
}

type wireEdge struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
}

type wireDocument struct {
	ID        string            `json:"id" yaml:"id" mapstructure:"id"`
	Name      string            `json:"name" yaml:"name" mapstructure:"name"`
	Nodes     []wireNode        `json:"nodes" yaml:"nodes" mapstructure:"nodes"`
	Edges     []wireEdge        `json:"edges" yaml:"edges" mapstructure:"edges"`
	Variables []domain.Variable `json:"variables" yaml:"variables" mapstructure:"variables"`
	CreatedAt time.Time         `json:"createdAt" yaml:"createdAt" mapstructure:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt" yaml:"updatedAt" mapstructure:"updatedAt"`
}

// requiredKeys must be present (and non-null) for a payload to be importable.
var requiredKeys = []string{"nodes", "edges"}

// Decode parses a document. An empty format auto-detects.
// Every failure is a *domain.MalformedDocumentError.
func Decode(data []byte, format Format) (*domain.Document, error) {
	if format == "" {
		format = DetectFormat(data)
	}

	raw, err := decodeRaw(data, format)
	if err != nil {
		return nil, &domain.MalformedDocumentError{Err: err}
	}

	var missing []string
	for _, k := range requiredKeys {
		if raw[k] == nil {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MalformedDocumentError{Missing: missing}
	}

	var w wireDocument
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &w,
		WeaklyTypedInput: true,
		DecodeHook:       timeHook,
	})
	if err != nil {
		return nil, &domain.MalformedDocumentError{Err: err}
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.MalformedDocumentError{Err: err}
	}

	doc, err := fromWire(w)
	if err != nil {
		return nil, &domain.MalformedDocumentError{Err: err}
	}
	return doc, nil
}

var timeType = reflect.TypeOf(time.Time{})

// timeHook parses RFC 3339 timestamps; an empty string is the zero time.
func timeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

func decodeRaw(data []byte, format Format) (map[string]any, error) {
	var raw map[string]any
	switch format {
	case JSON:
		d := json.NewDecoder(bytes.NewReader(data))
		d.UseNumber()
		if err := d.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
	if raw == nil {
		return nil, fmt.Errorf("document is empty")
	}
	return raw, nil
}

func fromWire(w wireDocument) (*domain.Document, error) {
	doc := &domain.Document{
		ID:        w.ID,
		Name:      w.Name,
		Nodes:     make([]domain.Node, 0, len(w.Nodes)),
		Edges:     make([]domain.Edge, 0, len(w.Edges)),
		Variables: make([]domain.Variable, 0, len(w.Variables)),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}

	for _, n := range w.Nodes {
		tag := n.Type
		if tag == "" {
			tag = n.Kind
		}
		data, err := domain.PropertyBag(n.Data).Normalize()
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		if data == nil {
			data = domain.PropertyBag{}
		}
		doc.Nodes = append(doc.Nodes, domain.Node{
			ID:       n.ID,
			Kind:     CanonicalKind(tag),
			Position: n.Position,
			Data:     data,
		})
	}

	for _, e := range w.Edges {
		doc.Edges = append(doc.Edges, domain.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}

	for _, v := range w.Variables {
		val, err := domain.NormalizeValue(v.Value)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		v.Value = val
		doc.Variables = append(doc.Variables, v)
	}
	return doc, nil
}

func toWire(doc *domain.Document) wireDocument {
	w := wireDocument{
		ID:        doc.ID,
		Name:      doc.Name,
		Nodes:     make([]wireNode, 0, len(doc.Nodes)),
		Edges:     make([]wireEdge, 0, len(doc.Edges)),
		Variables: domain.CloneVariables(doc.Variables),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, n := range doc.Nodes {
		data := map[string]any(n.Data.Clone())
		if data == nil {
			data = map[string]any{}
		}
		w.Nodes = append(w.Nodes, wireNode{
			ID:       n.ID,
			Type:     WireTag(n.Kind),
			Position: n.Position,
			Data:     data,
		})
	}
	for _, e := range doc.Edges {
		w.Edges = append(w.Edges, wireEdge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return w
}

// Encode serializes a document. JSON output is indented.
func Encode(doc *domain.Document, format Format) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("encode: nil document")
	}
	w := toWire(doc)
	switch format {
	case JSON, "":
		return json.MarshalIndent(w, "", "  ")
	case YAML:
		return yaml.Marshal(w)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// EncodePayload serializes a clipboard payload as a document fragment
// ({nodes, edges}) so it can be shared and merged like any document.
func EncodePayload(p *domain.ClipboardPayload, format Format) ([]byte, error) {
	if p == nil {
		p = &domain.ClipboardPayload{}
	}
	return Encode(&domain.Document{Nodes: p.Nodes, Edges: p.Edges}, format)
}

// DecodePayload parses a fragment written by EncodePayload.
func DecodePayload(data []byte, format Format) (*domain.ClipboardPayload, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return &domain.ClipboardPayload{Nodes: doc.Nodes, Edges: doc.Edges}, nil
}
