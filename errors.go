package veneer

import (
	"errors"
	"fmt"
)

// ErrStackUnderflow is the panic value for a StopRendering call with no
// matching StartRendering. Mismatched pairing is a bug in the caller, so
// it does not travel through the usual error returns.
var ErrStackUnderflow = errors.New("veneer: rendering stack underflow")

// Passthrough reports that the underlying source is not templated content
// and must be returned verbatim. It travels as an error value so the
// short-circuit unwinds through ordinary returns and deferred frame pops,
// but it is not a failure: every entry point converts it into output.
type Passthrough struct {
	Source string
}

func (p *Passthrough) Error() string {
	return "veneer: passthrough source"
}

// TemplateNotFoundError reports that the loader could not locate source
// for a logical name. Recoverable; honors ignoreUnknown.
type TemplateNotFoundError struct {
	Kind Kind
	Name string
	Err  error // underlying loader error, if any
}

func (e *TemplateNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("veneer: %s %q not found: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("veneer: %s %q not found", e.Kind, e.Name)
}

func (e *TemplateNotFoundError) Unwrap() error { return e.Err }

// ChildNotFoundError reports that a template has no child node with the
// requested name. Recoverable; honors ignoreUnknown.
type ChildNotFoundError struct {
	Name string
}

func (e *ChildNotFoundError) Error() string {
	return fmt.Sprintf("veneer: no child node named %q", e.Name)
}

// SectionAddressingError reports a section reference that cannot be
// addressed on its template, for example a section path into a node that
// has no children. Recoverable, but never silenced by ignoreUnknown.
type SectionAddressingError struct {
	Template string
	Section  string
}

func (e *SectionAddressingError) Error() string {
	return fmt.Sprintf("veneer: section %q is not addressable on %q", e.Section, e.Template)
}

// unknown reports whether err is one of the conditions silenced by
// ignoreUnknown: a missing template or a missing named child.
func unknown(err error) bool {
	var tnf *TemplateNotFoundError
	var cnf *ChildNotFoundError
	return errors.As(err, &tnf) || errors.As(err, &cnf)
}
