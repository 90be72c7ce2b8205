// Package cast holds the scalar type casters used by compiled record
// definitions. A caster turns one raw input value into a typed value or
// reports why it could not.
//
// Built-in casters are registered under a Type tag ("string", "integer",
// "date", ...). Schemas refer to them by tag; custom casters may either be
// registered under a new tag with Register or placed directly in a schema.
package cast

import (
	"fmt"
	"sort"
	"sync"
)

// Caster converts a raw value into a typed value.
// A nil raw value means "no value supplied" and is never passed to Cast by
// the validator.
type Caster interface {
	Cast(v any) (any, error)
}

// Func adapts a plain function to the Caster interface.
type Func func(v any) (any, error)

// Cast calls f(v).
func (f Func) Cast(v any) (any, error) { return f(v) }

// Type is a scalar type tag naming a registered Caster.
type Type string

const (
	String        Type = "string"
	Integer       Type = "integer"
	ID            Type = "id"
	Float         Type = "float"
	Boolean       Type = "boolean"
	Binary        Type = "binary"
	Map           Type = "map"
	Any           Type = "any"
	Date          Type = "date"
	Time          Type = "time"
	NaiveDatetime Type = "naive_datetime"
	UTCDatetime   Type = "utc_datetime"
	UUID          Type = "uuid"
	BinaryID      Type = "binary_id"
)

// Cast resolves the tag in the registry and delegates to its Caster.
func (t Type) Cast(v any) (any, error) {
	c, ok := Lookup(t)
	if !ok {
		return nil, &Error{Type: string(t), Value: v, Err: fmt.Errorf("unknown type %q", string(t))}
	}
	return c.Cast(v)
}

// Error reports a value that could not be cast.
type Error struct {
	Type  string // tag or caster description
	Value any
	Err   error // optional underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cast: cannot cast %T to %s: %v", e.Value, e.Type, e.Err)
	}
	return fmt.Sprintf("cast: cannot cast %T to %s", e.Value, e.Type)
}

func (e *Error) Unwrap() error { return e.Err }

func fail(t Type, v any, err error) (any, error) {
	return nil, &Error{Type: string(t), Value: v, Err: err}
}

var (
	registryMu sync.RWMutex
	registry   = map[Type]Caster{}
)

// Register binds a Caster to a tag, replacing any previous binding.
// Definitions resolve tags at compile time, so registrations should happen
// before schemas using the tag are compiled.
func Register(t Type, c Caster) {
	if t == "" || c == nil {
		return
	}
	registryMu.Lock()
	registry[t] = c
	registryMu.Unlock()
}

// Lookup returns the Caster registered for t.
func Lookup(t Type) (Caster, bool) {
	registryMu.RLock()
	c, ok := registry[t]
	registryMu.RUnlock()
	return c, ok
}

// Types lists the registered tags in ascending order.
func Types() []Type {
	registryMu.RLock()
	out := make([]Type, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	registryMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
