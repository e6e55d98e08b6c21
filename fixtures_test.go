package veneer

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// d is shorthand for test variable maps.
type d map[string]any

// testScope is a flat map scope. Clone and CopyWith copy the map one
// level deep, which is all the engine tests need.
type testScope map[string]any

func (s testScope) Add(key string, value any) { s[key] = value }

func (s testScope) Clone() Scope {
	out := make(testScope, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (s testScope) CopyWith(vars map[string]any) Scope {
	out := s.Clone().(testScope)
	for k, v := range vars {
		out[k] = v
	}
	return out
}

// testLoader serves template source from maps. Templates are keyed by
// "Controller/Action", layouts and partials by name.
type testLoader struct {
	templates map[string]string
	layouts   map[string]string
	partials  map[string]string
}

func (l *testLoader) TemplateKey(controller, action string) string {
	return "views/" + controller + "/" + action
}
func (l *testLoader) LayoutKey(name string) string  { return "layouts/" + name }
func (l *testLoader) PartialKey(name string) string { return "partials/_" + name }

func (l *testLoader) TemplateSource(controller, action string) (string, error) {
	return l.source(l.templates, controller+"/"+action)
}
func (l *testLoader) LayoutSource(name string) (string, error) {
	return l.source(l.layouts, name)
}
func (l *testLoader) PartialSource(name string) (string, error) {
	return l.source(l.partials, name)
}

func (l *testLoader) source(m map[string]string, key string) (string, error) {
	src, ok := m[key]
	if !ok {
		return "", fmt.Errorf("no source for %q", key)
	}
	return src, nil
}

// testParser counts parses and understands a line-oriented fixture
// syntax:
//
//	@layout Name     declares the enclosing layout
//	@section name    starts a named section, closed by @end
//	#raw (line 1)    the rest of the source is passthrough content
//
// Body lines interpolate ${var} from the scope. Nodes registered in
// nodes override parsing for their key, which lets tests plant evaluation
// callbacks and injected errors behind real resolver lookups.
type testParser struct {
	mu     sync.Mutex
	parses map[string]int
	nodes  map[string]Template
}

func newTestParser() *testParser {
	return &testParser{parses: make(map[string]int), nodes: make(map[string]Template)}
}

func (p *testParser) Parse(key string, source SourceFunc) (Template, error) {
	src, err := source()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.parses[key]++
	p.mu.Unlock()
	if n, ok := p.nodes[key]; ok {
		return n, nil
	}
	if rest, ok := strings.CutPrefix(src, "#raw\n"); ok {
		return nil, &Passthrough{Source: rest}
	}
	return parseFixture(src), nil
}

func (p *testParser) parsed(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.parses[key]
}

// testNode implements Template for fixtures and hand-built trees.
type testNode struct {
	body     []string
	children map[string]*testNode
	childErr error
	bindErr  error
	evalErr  error
	eval     func(sc Scope) (string, error)
	binds    int
}

var varPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func (n *testNode) Evaluate(sc Scope) (string, error) {
	if n.eval != nil {
		return n.eval(sc)
	}
	if n.evalErr != nil {
		return "", n.evalErr
	}
	vars, _ := sc.(testScope)
	return varPattern.ReplaceAllStringFunc(strings.Join(n.body, "\n"), func(m string) string {
		if v, ok := vars[m[2:len(m)-1]]; ok {
			return fmt.Sprint(v)
		}
		return ""
	}), nil
}

func (n *testNode) Child(name string) (Template, error) {
	if n.childErr != nil {
		return nil, n.childErr
	}
	if c, ok := n.children[name]; ok {
		return c, nil
	}
	return nil, &ChildNotFoundError{Name: name}
}

func (n *testNode) Bind(sc Scope) error {
	n.binds++
	return n.bindErr
}

func parseFixture(src string) *testNode {
	root := &testNode{children: make(map[string]*testNode)}
	var section *testNode
	for _, line := range strings.Split(src, "\n") {
		switch {
		case strings.HasPrefix(line, "@layout"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "@layout"))
			root.children[layoutChild] = &testNode{body: []string{name}}
		case strings.HasPrefix(line, "@section "):
			section = &testNode{children: make(map[string]*testNode)}
			root.children[strings.TrimPrefix(line, "@section ")] = section
		case line == "@end":
			section = nil
		case section != nil:
			section.body = append(section.body, line)
		case line != "":
			root.body = append(root.body, line)
		}
	}
	return root
}

// countingHandler records every delegated view error and renders a fixed
// marker.
type countingHandler struct {
	calls []error
	out   string
}

func (h *countingHandler) HandleViewError(err error) string {
	h.calls = append(h.calls, err)
	return h.out
}
