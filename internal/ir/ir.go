// Package ir is the classified form of a schema literal. Every entry is
// tagged exactly once with its field shape so the compiler and the validator
// never re-inspect raw literal values. This package is internal and not part
// of the public API.
package ir

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Elonsoft/defparser/cast"
	"github.com/Elonsoft/defparser/internal/keymap"
)

// Kind identifies the shape of one schema entry.
type Kind int

const (
	KindScalar         Kind = iota // type tag naming a registered caster
	KindCaster                     // caster value supplied by the schema author
	KindEmbedOne                   // nested literal
	KindEmbedMany                  // one-element sequence holding a nested literal
	KindPredefinedOne              // embeds_one directive
	KindPredefinedMany             // embeds_many directive
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindCaster:
		return "caster"
	case KindEmbedOne:
		return "embeds_one"
	case KindEmbedMany:
		return "embeds_many"
	case KindPredefinedOne:
		return "predefined_embeds_one"
	case KindPredefinedMany:
		return "predefined_embeds_many"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Directive is implemented by embedding directives that point at an already
// compiled record. Ref is opaque to this package.
type Directive interface {
	IsMany() bool
	Ref() any
}

// Object is one nesting level. Fields are sorted by Name.
type Object struct {
	Fields []Field
}

// Field is a classified schema entry.
type Field struct {
	Name   string
	Kind   Kind
	Type   string      // KindScalar
	Caster cast.Caster // KindCaster
	Object *Object     // KindEmbedOne, KindEmbedMany
	Ref    any         // KindPredefinedOne, KindPredefinedMany
}

// Error codes reported by Build.
const (
	CodeUnsupportedShape = "unsupported_field_shape"
	CodeInvalidArray     = "invalid_array_field"
	CodeEmptyName        = "empty_field_name"
	CodeInvalidName      = "invalid_field_name"
	CodeNotObject        = "schema_not_object"
)

// Error is a classification failure at Path (keys from the root).
type Error struct {
	Path    []string
	Code    string
	Message string
}

func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s at %s: %s", e.Code, strings.Join(e.Path, "."), e.Message)
}

// Build classifies a schema literal. The literal itself must be a map.
func Build(lit any) (*Object, error) {
	return build(lit, nil)
}

func build(lit any, path []string) (*Object, error) {
	m, ok := keymap.Normalize(lit)
	if !ok {
		return nil, &Error{Path: path, Code: CodeNotObject, Message: fmt.Sprintf("schema must be a map, got %T", lit)}
	}
	if k, bad := keymap.NonStringKey(lit); bad {
		return nil, &Error{Path: path, Code: CodeInvalidName, Message: fmt.Sprintf("field name %v (%T) is not a string", k, k)}
	}
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	obj := &Object{Fields: make([]Field, 0, len(names))}
	for _, name := range names {
		fp := append(append([]string(nil), path...), name)
		if name == "" {
			return nil, &Error{Path: path, Code: CodeEmptyName, Message: "field name must not be empty"}
		}
		f, err := classify(name, m[name], fp)
		if err != nil {
			return nil, err
		}
		obj.Fields = append(obj.Fields, f)
	}
	return obj, nil
}

func classify(name string, v any, path []string) (Field, error) {
	f := Field{Name: name}
	if d, ok := v.(Directive); ok {
		f.Ref = d.Ref()
		f.Kind = KindPredefinedOne
		if d.IsMany() {
			f.Kind = KindPredefinedMany
		}
		return f, nil
	}
	if v != nil && reflect.TypeOf(v).Kind() == reflect.String {
		f.Kind = KindScalar
		f.Type = reflect.ValueOf(v).String()
		return f, nil
	}
	if c, ok := v.(cast.Caster); ok {
		f.Kind = KindCaster
		f.Caster = c
		return f, nil
	}
	if _, ok := keymap.Normalize(v); ok {
		obj, err := build(v, path)
		if err != nil {
			return f, err
		}
		f.Kind = KindEmbedOne
		f.Object = obj
		return f, nil
	}
	if items, ok := keymap.Slice(v); ok {
		if len(items) != 1 {
			return f, &Error{Path: path, Code: CodeInvalidArray, Message: fmt.Sprintf("array field must contain exactly one schema, got %d entries", len(items))}
		}
		if _, ok := keymap.Normalize(items[0]); !ok {
			return f, &Error{Path: path, Code: CodeInvalidArray, Message: fmt.Sprintf("array field must contain exactly one schema, got %T", items[0])}
		}
		obj, err := build(items[0], path)
		if err != nil {
			return f, err
		}
		f.Kind = KindEmbedMany
		f.Object = obj
		return f, nil
	}
	return f, &Error{Path: path, Code: CodeUnsupportedShape, Message: fmt.Sprintf("unsupported field shape %T", v)}
}
