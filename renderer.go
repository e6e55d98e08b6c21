package veneer

import (
	"errors"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Logger receives view errors and resolver diagnostics for renderers and
// resolvers that were not given their own logger.
var Logger logrus.FieldLogger = logrus.StandardLogger()

// layoutChild is the child node a template declares its enclosing layout
// in. An absent child and an empty layout name are equivalent: both mean
// the template renders bare.
const layoutChild = "layoutName"

// Renderer orchestrates the Render, RenderSection and RenderPartial entry
// points for a single controller+action view.
//
// Recoverable conditions (missing templates, missing sections, evaluation
// failures) never escape an entry point: depending on ignoreUnknown they
// yield empty output or whatever the error handler renders. The one
// non-local exit is passthrough, where the raw source becomes the output
// after every pushed frame has been popped.
type Renderer struct {
	session *Session
	errs    ErrorHandler
	log     logrus.FieldLogger
}

// WithErrorHandler replaces the last-resort error renderer. The default
// logs the error and produces empty output.
func (t *Renderer) WithErrorHandler(h ErrorHandler) *Renderer {
	t.errs = h
	return t
}

// WithLogger routes view error logging to log instead of the package
// Logger.
func (t *Renderer) WithLogger(log logrus.FieldLogger) *Renderer {
	t.log = log
	return t
}

// Session exposes the rendering stack, mainly so callers can observe
// push/pop balance.
func (t *Renderer) Session() *Session { return t.session }

// Render resolves and evaluates the view for the renderer's controller
// and action, wrapped in its declared layout when it names one. A
// non-empty actionOverride replaces the configured action; its first
// character is upper-cased to match the resolver's key convention.
func (t *Renderer) Render(actionOverride string) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	var sc = t.session.CurrentScope()

	tmpl, err := t.session.currentTemplate(capitalize(actionOverride))
	if err != nil {
		return t.recoverOutput(err, false), nil
	}
	if err := tmpl.Bind(sc); err != nil {
		return t.recoverOutput(err, false), nil
	}

	layout, err := t.layoutFor(tmpl, sc)
	if err != nil {
		return t.recoverOutput(err, false), nil
	}

	var out string
	if layout != nil {
		// The layout is what gets evaluated, against the base scope, but
		// the frame keeps the template: sections the layout pulls in must
		// resolve against the template, not re-enter the layout.
		out, err = t.renderFrame(KindLayout, tmpl, sc, layout)
	} else {
		out, err = t.renderFrame(KindTemplate, tmpl, sc, tmpl)
	}
	if err != nil {
		return t.recoverOutput(err, false), nil
	}
	return out, nil
}

// RenderSection evaluates the named section of the template currently
// being rendered. Inside a layout the section runs live in the layout's
// own scope and the nested kind becomes KindTemplate; everywhere else the
// current kind carries over and the section receives a copy of the
// current scope overlaid with vars. With ignoreUnknown set, a missing
// template or section yields empty output instead of an error rendering.
func (t *Renderer) RenderSection(name string, vars map[string]any, ignoreUnknown bool) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}

	var (
		kind Kind
		sc   Scope
	)
	if t.session.CurrentKind() == KindLayout {
		// Sections declared in the surrounding template evaluate in the
		// layout's variable scope, unshielded: writes made by the section
		// are visible to the layout afterwards.
		kind = KindTemplate
		sc = t.session.CurrentScope()
	} else {
		kind = t.session.CurrentKind()
		sc = t.session.CurrentScope().CopyWith(vars)
	}

	tmpl, err := t.session.CurrentTemplate()
	if err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}
	node, err := tmpl.Child(name)
	if err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}

	out, err := t.renderFrame(kind, tmpl, sc, node)
	if err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}
	return out, nil
}

// RenderPartial renders the named partial against a clone of the current
// scope; the caller's live scope is never shared with the partial. A
// non-empty section addresses one named section of the partial, rendered
// inside the partial's own frame.
func (t *Renderer) RenderPartial(name, section string, vars map[string]any, ignoreUnknown bool) (string, error) {
	if err := t.check(); err != nil {
		return "", err
	}
	var sc = t.session.CurrentScope().Clone()

	partial, err := t.session.resolver.Partial(name)
	if err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}
	if err := partial.Bind(sc); err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}

	t.session.StartRendering(KindPartial, partial, sc)
	defer t.session.StopRendering()

	if section != "" {
		return t.RenderSection(section, vars, ignoreUnknown)
	}

	for k, v := range vars {
		sc.Add(k, v)
	}
	out, err := partial.Evaluate(sc)
	if err != nil {
		return t.recoverOutput(err, ignoreUnknown), nil
	}
	return out, nil
}

// layoutFor returns the parsed, argument-bound layout tmpl declares, or
// nil when it declares none. The layout name child is evaluated against
// sc, so a view may pick its layout dynamically.
func (t *Renderer) layoutFor(tmpl Template, sc Scope) (Template, error) {
	child, err := tmpl.Child(layoutChild)
	if err != nil {
		var cnf *ChildNotFoundError
		if errors.As(err, &cnf) {
			return nil, nil
		}
		return nil, err
	}
	name, err := child.Evaluate(sc)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	layout, err := t.session.resolver.Layout(name)
	if err != nil {
		return nil, err
	}
	if err := layout.Bind(sc); err != nil {
		return nil, err
	}
	return layout, nil
}

// renderFrame evaluates node against sc inside a frame of the given kind.
// The pop is deferred so the start/stop pairing survives every exit path,
// including a panicking evaluator.
func (t *Renderer) renderFrame(kind Kind, tmpl Template, sc Scope, node Template) (string, error) {
	t.session.StartRendering(kind, tmpl, sc)
	defer t.session.StopRendering()
	return node.Evaluate(sc)
}

// recoverOutput resolves a recoverable error into output: passthrough
// source verbatim, empty output for unknown names when ignoreUnknown is
// set, and otherwise whatever the error handler renders.
func (t *Renderer) recoverOutput(err error, ignoreUnknown bool) string {
	var pt *Passthrough
	if errors.As(err, &pt) {
		return pt.Source
	}
	if ignoreUnknown && unknown(err) {
		return ""
	}
	return t.handler().HandleViewError(err)
}

func (t *Renderer) check() error {
	if t.session == nil || t.session.resolver == nil {
		return errors.New("veneer: resolver required")
	}
	if t.session.base == nil {
		return errors.New("veneer: base scope required")
	}
	return nil
}

func (t *Renderer) handler() ErrorHandler {
	if t.errs != nil {
		return t.errs
	}
	return ErrorHandlerFunc(func(err error) string {
		t.logger().WithFields(logrus.Fields{
			"controller": t.session.controller,
			"action":     t.session.action,
			"error":      err,
		}).Error("view render failed")
		return ""
	})
}

func (t *Renderer) logger() logrus.FieldLogger {
	if t.log != nil {
		return t.log
	}
	return Logger
}

// capitalize upper-cases the first character of an action name, matching
// the resolver's key convention. Empty input stays empty.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
