/*
Package dsl provides a Go DSL for programmatically constructing tapestry documents.

It builds domain.Document values with a fluent builder instead of hand-written
JSON or YAML. This is mostly useful for tests, examples and generated
workflows, where IDE autocompletion beats string literals.

Example usage:

	b := dsl.New().Name("scraper")

	b.Add("fetch").
		Kind("http").
		At(0, 0).
		Set("url", "https://example.com/items?page={page}").
		Go("store")

	b.Add("store").
		Kind("log").
		At(200, 0)

	b.Add("about").
		Note("Fetches one page per run").
		At(0, 120)

	b.Variable("page", 1, domain.VarNumber)

	doc, err := b.Build()
	// ... ed.LoadDocument(doc)
*/
package dsl
