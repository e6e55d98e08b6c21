package veneer

// frame is one rendering stack entry: the kind being rendered, the parsed
// template it belongs to, and the variable scope it evaluates against.
type frame struct {
	kind  Kind
	tmpl  Template
	scope Scope
}

// Session owns the rendering stack for one logical render call tree. The
// stack is a call-depth mirror: its depth equals the current nesting of
// Render, RenderSection and RenderPartial invocations, and its top frame
// defines the "current" kind, template and scope. A Session is not safe
// for concurrent use; each top-level render gets its own.
type Session struct {
	resolver   *Resolver
	controller string
	action     string
	base       Scope
	stack      []frame
}

// NewSession returns a session for the given view identity. The base
// scope is what CurrentScope reports while no frame is pushed.
func NewSession(resolver *Resolver, controller, action string, base Scope) *Session {
	return &Session{
		resolver:   resolver,
		controller: controller,
		action:     action,
		base:       base,
	}
}

// StartRendering pushes a new frame. Every StartRendering must be paired
// with exactly one StopRendering, in LIFO order, on all exit paths.
func (s *Session) StartRendering(kind Kind, tmpl Template, scope Scope) {
	s.stack = append(s.stack, frame{kind: kind, tmpl: tmpl, scope: scope})
}

// StopRendering pops the top frame. It panics with ErrStackUnderflow when
// the stack is empty: an unmatched pop is a bug in the caller, not a
// recoverable condition.
func (s *Session) StopRendering() {
	if len(s.stack) == 0 {
		panic(ErrStackUnderflow)
	}
	s.stack[len(s.stack)-1] = frame{}
	s.stack = s.stack[:len(s.stack)-1]
}

// CurrentKind returns the kind being rendered, or KindTemplate when no
// frame has been pushed yet.
func (s *Session) CurrentKind() Kind {
	if len(s.stack) == 0 {
		return KindTemplate
	}
	return s.stack[len(s.stack)-1].kind
}

// CurrentScope returns the top frame's scope, or the base scope when the
// stack is empty.
func (s *Session) CurrentScope() Scope {
	if len(s.stack) == 0 {
		return s.base
	}
	return s.stack[len(s.stack)-1].scope
}

// CurrentTemplate returns the template being rendered. With an empty
// stack it resolves the session's configured controller and action on
// demand; the result is not pushed, so a caller that intends to render
// still calls StartRendering itself.
func (s *Session) CurrentTemplate() (Template, error) {
	return s.currentTemplate("")
}

// currentTemplate is CurrentTemplate with an optional action override for
// the lazy resolution path. The override is ignored while a frame is on
// the stack, where the frame's own template wins.
func (s *Session) currentTemplate(action string) (Template, error) {
	if n := len(s.stack); n > 0 {
		return s.stack[n-1].tmpl, nil
	}
	if action == "" {
		action = s.action
	}
	return s.resolver.Template(s.controller, action)
}

// Depth reports the number of frames on the stack. It returns to zero
// whenever no entry point is executing.
func (s *Session) Depth() int { return len(s.stack) }
