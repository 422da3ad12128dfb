// Package resolve turns a checked [program.Program] into results: the rendered
// types of the requested names and the diagnostics of the snippet.
//
// Types and diagnostics are computed independently, reading one never computes
// the other.
package resolve

import (
	"go/types"
	"slices"
	"sync"

	"go.followtheprocess.codes/typeprobe/internal/program"
	"go.followtheprocess.codes/typeprobe/internal/render"
)

// state is the state of a single cache entry.
type state int

const (
	unresolved state = iota // Not yet rendered
	resolved                // Rendered, value is set
)

// entry is the cache entry for a single name.
type entry struct {
	obj   *types.TypeName // The declared type name
	value string          // Rendered type, only valid once resolved
	state state           // Whether value has been computed
}

// Types is a lazily rendered, memoized mapping of names to their resolved types.
//
// It is safe for concurrent use.
type Types struct {
	entries map[string]*entry                // Entries by name
	render  func(obj *types.TypeName) string // Renders a single entry
	names   []string                         // Names with an entry, in candidate order
	renders int                              // Number of times render was called
	mu      sync.Mutex                       // Guards entries and renders
}

// New returns the [Types] for the candidate names in prog.
//
// A candidate only gets an entry if it names a type visible from the snippet's
// file scope, anything else is silently left out. Nothing is rendered until it
// is asked for.
func New(prog *program.Program, candidates []string) *Types {
	visible := symbols(prog)

	t := &Types{
		entries: make(map[string]*entry),
		render: func(obj *types.TypeName) string {
			return render.Declared(obj, prog.Package, prog.Config.Render)
		},
	}

	for _, name := range candidates {
		if _, seen := t.entries[name]; seen {
			continue
		}

		obj, ok := visible[name]
		if !ok {
			continue
		}

		t.entries[name] = &entry{obj: obj}
		t.names = append(t.names, name)
	}

	return t
}

// Get returns the rendered type for name, rendering it on first use.
//
// The bool is false if name has no entry.
func (t *Types) Get(name string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[name]
	if !ok {
		return "", false
	}

	return t.resolve(e), true
}

// Names returns the names with an entry, in the order they were requested.
func (t *Types) Names() []string {
	return slices.Clone(t.names)
}

// All returns every name mapped to its rendered type, rendering anything not
// already rendered.
func (t *Types) All() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()

	all := make(map[string]string, len(t.entries))
	for name, e := range t.entries {
		all[name] = t.resolve(e)
	}

	return all
}

// Len returns the number of entries.
func (t *Types) Len() int {
	return len(t.names)
}

// resolve returns the value of e, rendering and storing it if needed.
//
// t.mu must be held.
func (t *Types) resolve(e *entry) string {
	if e.state == resolved {
		return e.value
	}

	t.renders++

	e.value = t.render(e.obj)
	e.state = resolved

	return e.value
}

// symbols snapshots the type names visible from the end of the virtual file,
// walking outwards from the file scope through the package scope to the universe.
// Inner declarations shadow outer ones.
func symbols(prog *program.Program) map[string]*types.TypeName {
	scope := prog.Info.Scopes[prog.Virtual]
	if scope == nil && prog.Package != nil {
		scope = prog.Package.Scope()
	}

	seen := make(map[string]bool)
	visible := make(map[string]*types.TypeName)

	for ; scope != nil; scope = scope.Parent() {
		for _, name := range scope.Names() {
			if seen[name] {
				continue
			}

			seen[name] = true

			if obj, ok := scope.Lookup(name).(*types.TypeName); ok {
				visible[name] = obj
			}
		}
	}

	return visible
}
