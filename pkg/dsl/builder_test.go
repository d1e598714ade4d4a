package dsl

import (
	"errors"
	"testing"

	"github.com/aretw0/tapestry/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New().ID("doc-1").Name("scraper")

	b.Add("fetch").
		Kind("http").
		At(0, 0).
		Set("url", "/items?page={page}").
		Set("retries", 3).
		Go("store")

	b.Add("store").
		Kind("log").
		At(200, 0)

	b.Add("about").
		Note("one page per run").
		At(0, 120)

	b.Variable("page", 1, domain.VarNumber)

	doc, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	if doc.ID != "doc-1" || doc.Name != "scraper" {
		t.Errorf("unexpected header %q %q", doc.ID, doc.Name)
	}
	if len(doc.Nodes) != 3 {
		t.Fatalf("Expected 3 nodes, got %d", len(doc.Nodes))
	}
	if doc.Nodes[0].ID != "fetch" || doc.Nodes[2].ID != "about" {
		t.Errorf("nodes not in declaration order: %v", doc.Nodes)
	}
	if got := doc.Nodes[0].Data["retries"]; got != 3.0 {
		t.Errorf("Expected retries normalized to 3.0, got %#v", got)
	}
	if doc.Nodes[2].Kind != domain.KindNote {
		t.Errorf("Expected note kind, got %q", doc.Nodes[2].Kind)
	}
	if len(doc.Edges) != 1 || doc.Edges[0].ID != "fetch->store" {
		t.Errorf("unexpected edges %+v", doc.Edges)
	}
	if len(doc.Variables) != 1 || doc.Variables[0].Value != 1.0 {
		t.Errorf("unexpected variables %+v", doc.Variables)
	}
}

func TestBuilder_AddIsIdempotent(t *testing.T) {
	b := New()
	first := b.Add("a").Kind("http")
	second := b.Add("a")
	if first != second {
		t.Fatal("Add returned a new builder for an existing id")
	}
	doc := b.MustBuild()
	if len(doc.Nodes) != 1 || doc.Nodes[0].Kind != "http" {
		t.Errorf("unexpected nodes %+v", doc.Nodes)
	}
}

func TestBuilder_StructuralKinds(t *testing.T) {
	b := New()
	b.Add("g").Group("Fetching")
	b.Add("h").SubflowHeader("Pagination")

	doc := b.MustBuild()
	if doc.Nodes[0].Kind != domain.KindGroup || doc.Nodes[0].Data["label"] != "Fetching" {
		t.Errorf("unexpected group %+v", doc.Nodes[0])
	}
	if doc.Nodes[1].Kind != domain.KindSubflowHeader {
		t.Errorf("unexpected header %+v", doc.Nodes[1])
	}
}

func TestBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"self-loop", func(b *Builder) { b.Add("a").Go("a") }},
		{"dangling edge", func(b *Builder) { b.Add("a").Go("missing") }},
		{"variable type mismatch", func(b *Builder) { b.Variable("flag", "yes", domain.VarBoolean) }},
		{"duplicate variable", func(b *Builder) {
			b.Variable("x", 1, domain.VarNumber)
			b.Variable("x", 2, domain.VarNumber)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New()
			tt.build(b)
			if _, err := b.Build(); err == nil {
				t.Error("expected Build() to fail")
			}
		})
	}
}

func TestBuilder_UnsupportedValue(t *testing.T) {
	b := New()
	b.Add("a").Set("ch", make(chan int))

	_, err := b.Build()
	if !errors.Is(err, domain.ErrUnsupportedValue) {
		t.Errorf("Expected ErrUnsupportedValue, got %v", err)
	}
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	b := New()
	b.Add("a").Go("a")
	b.MustBuild()
}
