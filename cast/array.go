package cast

import (
	"fmt"
	"reflect"
)

// Array casts a sequence by applying Elem to every element.
type Array struct {
	Elem Caster
}

// ArrayOf returns a Caster for homogeneous sequences of scalars, e.g.
// ArrayOf(Integer) for a list of integers.
func ArrayOf(elem Caster) *Array { return &Array{Elem: elem} }

// Cast returns a []any. Nil elements stay nil; the first element that fails
// is reported with its index.
func (a *Array) Cast(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &Error{Type: "array", Value: v}
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, &Error{Type: "array", Value: v, Err: fmt.Errorf("binary is not a sequence")}
	}
	out := make([]any, rv.Len())
	for i := range out {
		e := rv.Index(i).Interface()
		if e == nil {
			continue
		}
		cv, err := a.Elem.Cast(e)
		if err != nil {
			return nil, &Error{Type: "array", Value: v, Err: fmt.Errorf("element %d: %w", i, err)}
		}
		out[i] = cv
	}
	return out, nil
}
