package defparser

import "github.com/Elonsoft/defparser/internal/keymap"

// Validate casts raw against def and returns the populated record. raw must
// be a map; keys may be strings or Atoms and unknown keys are ignored.
//
// On failure the error is Issues holding every invalid field found in one
// pass (unless ValidateOpt.FailFast), each addressed by its JSON Pointer from
// the root, e.g. /tags/1/value. Validate is safe for concurrent use.
func Validate(def *Definition, raw any, opts ...ValidateOpt) (*Record, error) {
	if def == nil {
		panic("defparser: Validate called with nil definition")
	}
	opt := lastOpt(opts)
	src, ok := asObject(raw)
	if !ok {
		return nil, Issues{expectedIssue(pathRef{}, "expected object")}
	}
	v := validator{failFast: opt.FailFast}
	rec, iss := v.record(def, src, pathRef{})
	if len(iss) > 0 {
		return nil, iss
	}
	return rec, nil
}

type validator struct {
	failFast bool
}

func (v validator) record(def *Definition, src map[string]any, at pathRef) (*Record, Issues) {
	rec := NewRecord(def)
	iss := rec.castAll(src, at, v.failFast)
	if v.failFast && len(iss) > 0 {
		return nil, iss
	}
	for _, e := range def.EmbedsOne {
		iss = AppendIssues(iss, rec.castEmbed(e, false, src, at, v.failFast, v.record)...)
		if v.failFast && len(iss) > 0 {
			return nil, iss
		}
	}
	for _, e := range def.EmbedsMany {
		iss = AppendIssues(iss, rec.castEmbed(e, true, src, at, v.failFast, v.record)...)
		if v.failFast && len(iss) > 0 {
			return nil, iss
		}
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return rec, nil
}

func asObject(v any) (map[string]any, bool) { return keymap.Normalize(v) }

func asSequence(v any) ([]any, bool) { return keymap.Slice(v) }
