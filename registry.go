package defparser

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the declaration surface: it compiles schemas once, keeps every
// resulting definition under its qualified name and exposes each parser under
// its operation name. Lookups are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]*Parser // by declared name
	ops     map[string]*Parser // by operation name
	defs    map[string]*Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[string]*Parser{},
		ops:     map[string]*Parser{},
		defs:    map[string]*Definition{},
	}
}

// Define compiles lit and registers the parser. Nothing is registered when
// compilation fails, the name (or its operation name) is taken, or one of the
// compiled record names is already registered.
func (r *Registry) Define(name string, lit any) (*Parser, error) {
	p, err := NewParser(name, lit)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parsers[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrParserExists, name)
	}
	if prev, ok := r.ops[p.op]; ok {
		return nil, fmt.Errorf("%w: operation %s is bound to %q", ErrParserExists, p.op, prev.name)
	}
	for _, d := range p.defs {
		if _, ok := r.defs[d.Name]; ok {
			return nil, newSchemaError(name, d.Path, CodeDuplicateName, "record name %q is already registered", d.Name)
		}
	}
	for _, d := range p.defs {
		r.defs[d.Name] = d
	}
	r.parsers[name] = p
	r.ops[p.op] = p
	return p, nil
}

// MustDefine is like Define but panics on error. It is meant for package
// initialization.
func (r *Registry) MustDefine(name string, lit any) *Parser {
	p, err := r.Define(name, lit)
	if err != nil {
		panic(err)
	}
	return p
}

// Parser returns the parser declared under name.
func (r *Registry) Parser(name string) (*Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[name]
	return p, ok
}

// Lookup returns the parser bound to an operation name such as "parse_user".
func (r *Registry) Lookup(op string) (*Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.ops[op]
	return p, ok
}

// Definition returns a registered definition by qualified name.
func (r *Registry) Definition(qualified string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[qualified]
	return d, ok
}

// Parsers lists registered parsers ordered by name.
func (r *Registry) Parsers() []*Parser {
	r.mu.RLock()
	out := make([]*Parser, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, p)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Define and Lookup.
func Default() *Registry { return defaultRegistry }

// Define registers a parser in the default registry.
func Define(name string, lit any) (*Parser, error) { return defaultRegistry.Define(name, lit) }

// MustDefine registers a parser in the default registry and panics on error.
func MustDefine(name string, lit any) *Parser { return defaultRegistry.MustDefine(name, lit) }

// Lookup finds a parser in the default registry by operation name.
func Lookup(op string) (*Parser, bool) { return defaultRegistry.Lookup(op) }
