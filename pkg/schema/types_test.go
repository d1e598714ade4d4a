package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/tapestry/pkg/domain"
)

func TestStringType(t *testing.T) {
	typ := String()

	if typ.Name() != "string" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "string")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{"hello", false},
		{"", false},
		{42, true},
		{3.14, true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestNumberType(t *testing.T) {
	typ := Number()

	if typ.Name() != "number" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "number")
	}

	tests := []struct {
		value   any
		wantErr bool
	}{
		{42, false},
		{int64(42), false},
		{uint8(7), false},
		{float32(1.5), false},
		{3.14, false},
		{"42", true},
		{true, true},
		{nil, true},
	}

	for _, tt := range tests {
		err := typ.Validate(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestBooleanType(t *testing.T) {
	typ := Boolean()

	if err := typ.Validate(true); err != nil {
		t.Errorf("Validate(true) unexpected error: %v", err)
	}
	if err := typ.Validate("true"); err == nil {
		t.Error("Validate(\"true\") expected error")
	}
}

func TestListType(t *testing.T) {
	untyped := List(nil)
	if untyped.Name() != "list" {
		t.Errorf("Name() = %q, want %q", untyped.Name(), "list")
	}
	if err := untyped.Validate([]any{"a", 1, true}); err != nil {
		t.Errorf("untyped list rejected mixed elements: %v", err)
	}
	if err := untyped.Validate("not a list"); err == nil {
		t.Error("expected error for non-list value")
	}

	typed := List(String())
	if typed.Name() != "[string]" {
		t.Errorf("Name() = %q, want %q", typed.Name(), "[string]")
	}
	if err := typed.Validate([]string{"a", "b"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := typed.Validate([]any{"a", 2}); err == nil {
		t.Error("expected element type error")
	}
}

func TestObjectType(t *testing.T) {
	typ := Object()
	if err := typ.Validate(map[string]any{"a": 1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := typ.Validate(map[int]any{1: 1}); err == nil {
		t.Error("expected error for non-string keys")
	}
	if err := typ.Validate([]any{}); err == nil {
		t.Error("expected error for list")
	}
}

func TestCustomType(t *testing.T) {
	positive := Custom("positive", func(v any) error {
		n, ok := v.(int)
		if !ok || n <= 0 {
			return errors.New("must be a positive int")
		}
		return nil
	})

	if positive.Name() != "positive" {
		t.Errorf("Name() = %q, want %q", positive.Name(), "positive")
	}
	if err := positive.Validate(3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := positive.Validate(-1); err == nil {
		t.Error("expected error for negative value")
	}
}

func TestParseType(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantErr  bool
	}{
		{"string", "string", false},
		{"number", "number", false},
		{"boolean", "boolean", false},
		{"list", "list", false},
		{"object", "object", false},
		{"any", "any", false},
		{"", "any", false},
		{"[number]", "[number]", false},
		{"[[string]]", "[[string]]", false},
		{"int", "", true},
		{"[widget]", "", true},
	}

	for _, tt := range tests {
		typ, err := ParseType(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if err == nil && typ.Name() != tt.wantName {
			t.Errorf("ParseType(%q).Name() = %q, want %q", tt.input, typ.Name(), tt.wantName)
		}
	}
}

func TestForVariable(t *testing.T) {
	typ, err := ForVariable(domain.VarNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if typ.Name() != "number" {
		t.Errorf("Name() = %q, want %q", typ.Name(), "number")
	}

	if _, err := ForVariable(domain.VariableType("date")); err == nil {
		t.Error("expected error for unknown variable type")
	}
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	in := Schema{"url": String(), "tags": List(String())}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out Schema
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["url"].Name() != "string" || out["tags"].Name() != "[string]" {
		t.Errorf("unexpected schema after round trip: %s", data)
	}
}
