/*
Package veneer resolves and renders nested view templates: a named view,
its optional enclosing layout, reusable partials and named sections, with
correct variable scoping across every nesting level.

The package owns the control structure of rendering only. Parsing template
syntax, evaluating expressions, storing variables and locating raw source
are all collaborator contracts (Parser, Template, Scope, Loader) supplied
by the embedding application.

Usage example

Construct one Resolver per application; it caches every parsed template by
logical name. Construct one Renderer per request:

	resolver := veneer.NewResolver(loader, parser)

	sc := scope.New(map[string]any{"user": user})
	out, err := resolver.Renderer("Posts", "Show", sc).Render("")

Within an evaluation, the engine re-enters through the same renderer:

	header, _ := r.RenderSection("header", nil, true)
	card, _ := r.RenderPartial("card", "", map[string]any{"title": t}, false)

Error policy

Missing templates, layouts, partials and sections are recoverable: with
ignoreUnknown they produce empty output, otherwise the ErrorHandler
renders a substitute. A parser may signal passthrough instead, meaning the
source is not templated content; the raw source then becomes the output
with every rendering frame still popped on the way out.
*/
package veneer
