package veneer

// SourceFunc supplies raw template source on demand. The resolver hands
// one to the parser so that source is only fetched when the parser has a
// cache miss of its own.
type SourceFunc func() (string, error)

// Loader maps logical template names to cache keys and raw source text.
// Implementations own all physical lookup (filesystem, embedded assets, a
// database); the rendering core never touches storage directly. A Source
// method fails when it cannot locate the named resource.
type Loader interface {
	TemplateKey(controller, action string) string
	LayoutKey(name string) string
	PartialKey(name string) string

	TemplateSource(controller, action string) (string, error)
	LayoutSource(name string) (string, error)
	PartialSource(name string) (string, error)
}

// Parser turns raw source into an evaluable Template. A parser that
// decides the source is not templated content at all returns a
// *Passthrough carrying the source verbatim; errors from the SourceFunc
// must be returned unchanged.
type Parser interface {
	Parse(key string, source SourceFunc) (Template, error)
}

// Template is a parsed template handle. Handles are owned by the
// resolver's cache and shared read-only across renders, so evaluation
// state belongs in the scope, never on the handle.
type Template interface {
	// Evaluate renders this node against the given scope.
	Evaluate(scope Scope) (string, error)

	// Child returns the named child node, failing with
	// *ChildNotFoundError when no such child is declared.
	Child(name string) (Template, error)

	// Bind binds the template's declared arguments into scope.
	Bind(scope Scope) error
}

// Scope is the variable environment visible to evaluation at one nesting
// level. Clone and CopyWith must return environments whose later mutation
// never affects the source scope.
type Scope interface {
	// Add binds value to key, replacing any existing binding.
	Add(key string, value any)

	// Clone returns an independent copy of this scope.
	Clone() Scope

	// CopyWith returns an independent copy of this scope with vars
	// overlaid on top.
	CopyWith(vars map[string]any) Scope
}

// ErrorHandler renders recoverable view errors. It must always produce
// some output and never fail; it is the last-resort renderer for missing
// partials, missing sections and evaluation errors.
type ErrorHandler interface {
	HandleViewError(err error) string
}

// ErrorHandlerFunc adapts a function to the ErrorHandler interface.
type ErrorHandlerFunc func(err error) string

func (f ErrorHandlerFunc) HandleViewError(err error) string { return f(err) }
