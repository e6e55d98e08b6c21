package veneer

import "fmt"

// Kind identifies what sort of view unit a rendering frame is evaluating.
// It drives the dispatch decisions in the render entry points: a section
// rendered while the current frame is a layout resolves against the
// template, not the layout itself.
type Kind int

const (
	// KindTemplate is a top-level view, resolved by controller and action.
	KindTemplate Kind = iota
	// KindPartial is a reusable named fragment rendered with its own scope.
	KindPartial
	// KindLayout is an enclosing template that a view declares itself
	// wrapped in.
	KindLayout
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template"
	case KindPartial:
		return "partial"
	case KindLayout:
		return "layout"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
