package veneer

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ResolutionKey identifies one parsed template in the resolver's cache.
// Action is only set for templates; layouts and partials are keyed by
// name alone.
type ResolutionKey struct {
	Name   string
	Action string
	Kind   Kind
}

// String is used as the in-flight de-duplication key, so it must be
// injective: fields are quoted to keep a separator inside a name from
// colliding with a name/action pair.
func (k ResolutionKey) String() string {
	if k.Action == "" {
		return fmt.Sprintf("%s:%q", k.Kind, k.Name)
	}
	return fmt.Sprintf("%s:%q/%q", k.Kind, k.Name, k.Action)
}

// Resolver obtains parsed templates by logical name. Each distinct
// ResolutionKey is parsed at most once for the resolver's lifetime and
// served from cache afterwards. A Resolver is safe for concurrent use;
// simultaneous resolution of the same key is collapsed into one parse.
type Resolver struct {
	loader Loader
	parser Parser
	log    logrus.FieldLogger

	group singleflight.Group

	mu    sync.RWMutex
	cache map[ResolutionKey]Template
}

// NewResolver returns a resolver backed by the given loader and parser.
func NewResolver(loader Loader, parser Parser) *Resolver {
	return &Resolver{
		loader: loader,
		parser: parser,
		cache:  make(map[ResolutionKey]Template),
	}
}

// WithLogger routes resolver diagnostics to log instead of the package
// Logger.
func (r *Resolver) WithLogger(log logrus.FieldLogger) *Resolver {
	r.log = log
	return r
}

// Renderer returns a renderer for the given controller and action, with
// base as its outermost variable scope.
func (r *Resolver) Renderer(controller, action string, base Scope) *Renderer {
	return &Renderer{session: NewSession(r, controller, action, base)}
}

// Template resolves the view for a controller and action pair.
func (r *Resolver) Template(controller, action string) (Template, error) {
	return r.resolve(
		ResolutionKey{Name: controller, Action: action, Kind: KindTemplate},
		r.loader.TemplateKey(controller, action),
		func() (string, error) { return r.loader.TemplateSource(controller, action) },
	)
}

// Layout resolves an enclosing layout by name.
func (r *Resolver) Layout(name string) (Template, error) {
	return r.resolve(
		ResolutionKey{Name: name, Kind: KindLayout},
		r.loader.LayoutKey(name),
		func() (string, error) { return r.loader.LayoutSource(name) },
	)
}

// Partial resolves a reusable fragment by name.
func (r *Resolver) Partial(name string) (Template, error) {
	return r.resolve(
		ResolutionKey{Name: name, Kind: KindPartial},
		r.loader.PartialKey(name),
		func() (string, error) { return r.loader.PartialSource(name) },
	)
}

// Purge drops every cached template, forcing re-resolution on next use.
// Loaders whose backing source changed call this instead of the resolver
// watching storage itself.
func (r *Resolver) Purge() {
	r.mu.Lock()
	r.cache = make(map[ResolutionKey]Template)
	r.mu.Unlock()
}

// resolve returns the cached template for key, parsing it first on a
// miss. A loader failure surfaces as *TemplateNotFoundError; a parser
// *Passthrough propagates to the caller uncached, since passthrough
// content bypasses the parsed-template lifecycle entirely.
func (r *Resolver) resolve(key ResolutionKey, parseKey string, source SourceFunc) (Template, error) {
	r.mu.RLock()
	tmpl, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	v, err, _ := r.group.Do(key.String(), func() (interface{}, error) {
		// A racing caller may have filled the cache between our miss and
		// entering the flight group.
		r.mu.RLock()
		tmpl, ok := r.cache[key]
		r.mu.RUnlock()
		if ok {
			return tmpl, nil
		}

		tmpl, err := r.parser.Parse(parseKey, func() (string, error) {
			src, err := source()
			if err != nil {
				return "", &TemplateNotFoundError{Kind: key.Kind, Name: key.Name, Err: err}
			}
			return src, nil
		})
		if err != nil {
			return nil, err
		}

		r.logger().WithField("key", key.String()).Debug("parsed template")
		r.mu.Lock()
		r.cache[key] = tmpl
		r.mu.Unlock()
		return tmpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Template), nil
}

func (r *Resolver) logger() logrus.FieldLogger {
	if r.log != nil {
		return r.log
	}
	return Logger
}
