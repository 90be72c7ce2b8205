// Package keymap normalizes loosely typed maps and sequences.
//
// Keys may come in two forms: the plain string form and a symbolic form (any
// named type whose underlying kind is string, e.g. defparser.Atom). Both forms
// address the same logical key; when both are present the plain string form
// wins.
package keymap

import (
	"fmt"
	"reflect"
	"sort"
)

var stringType = reflect.TypeOf("")

// Normalize returns v as map[string]any. ok is false when v is not a map
// keyed by strings or interfaces. Keys that are not string-kinded are dropped.
func Normalize(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	kt := rv.Type().Key()
	if kt.Kind() != reflect.String && kt.Kind() != reflect.Interface {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	var plain []reflect.Value
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			if k.IsNil() {
				continue
			}
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			continue
		}
		if k.Type() == stringType {
			plain = append(plain, iter.Key())
			continue
		}
		out[k.String()] = iter.Value().Interface()
	}
	// second pass so plain string keys override symbolic ones
	for _, k := range plain {
		ks := k
		if ks.Kind() == reflect.Interface {
			ks = ks.Elem()
		}
		out[ks.String()] = rv.MapIndex(k).Interface()
	}
	return out, true
}

// NonStringKey returns a key of the map v whose kind is not string, the
// smallest by its printed form when there are several. Normalize drops such
// keys; declarations use NonStringKey to reject them instead.
func NonStringKey(v any) (any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	var bad []any
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			if k.IsNil() {
				bad = append(bad, nil)
				continue
			}
			k = k.Elem()
		}
		if k.Kind() != reflect.String {
			bad = append(bad, k.Interface())
		}
	}
	if len(bad) == 0 {
		return nil, false
	}
	sort.Slice(bad, func(i, j int) bool { return fmt.Sprint(bad[i]) < fmt.Sprint(bad[j]) })
	return bad[0], true
}

// Slice returns v as []any when it is a slice or array. Byte slices and
// strings are not sequences.
func Slice(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case []any:
		return s, true
	case []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
