package defparser

import (
	"errors"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"

	"github.com/Elonsoft/defparser/cast"
	"github.com/Elonsoft/defparser/i18n"
)

// Record is a validated instance of a Definition. Every declared field is
// present: scalars that were not supplied hold nil, single embeds that were
// not supplied are nil and array embeds that were not supplied are empty.
type Record struct {
	def    *Definition
	values map[string]any
	one    map[string]*Record
	many   map[string][]*Record
}

// NewRecord returns the zero-valued instance of def.
func NewRecord(def *Definition) *Record {
	r := &Record{
		def:    def,
		values: make(map[string]any, len(def.Fields)),
		one:    make(map[string]*Record, len(def.EmbedsOne)),
		many:   make(map[string][]*Record, len(def.EmbedsMany)),
	}
	for _, f := range def.Fields {
		r.values[f.Key] = nil
	}
	for _, e := range def.EmbedsOne {
		r.one[e.Key] = nil
	}
	for _, e := range def.EmbedsMany {
		r.many[e.Key] = []*Record{}
	}
	return r
}

// Definition returns the definition r was built from.
func (r *Record) Definition() *Definition { return r.def }

// Get returns a scalar field. ok is false for undeclared keys.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Embed returns a single embedded record, or nil when it was not supplied.
func (r *Record) Embed(key string) *Record { return r.one[key] }

// Embeds returns an array of embedded records.
func (r *Record) Embeds(key string) []*Record { return r.many[key] }

// Map renders r back into raw mapping form. Feeding the result to Validate
// against the same definition yields an equal record.
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.values)+len(r.one)+len(r.many))
	for k, v := range r.values {
		out[k] = v
	}
	for k, sub := range r.one {
		if sub == nil {
			out[k] = nil
			continue
		}
		out[k] = sub.Map()
	}
	for k, subs := range r.many {
		arr := make([]any, len(subs))
		for i, sub := range subs {
			arr[i] = sub.Map()
		}
		out[k] = arr
	}
	return out
}

// Decode copies r into out, typically a pointer to a struct. Struct fields
// are matched by their `defparser` tag or, failing that, by name.
func (r *Record) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "defparser",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(r.Map())
}

// MarshalJSON encodes the mapping form of r.
func (r *Record) MarshalJSON() ([]byte, error) { return json.Marshal(r.Map()) }

type cascadeFunc func(def *Definition, src map[string]any, at pathRef) (*Record, Issues)

// castAll casts every scalar field of r's definition from src. Missing and
// nil values stay nil; every failing field is reported unless failFast.
func (r *Record) castAll(src map[string]any, at pathRef, failFast bool) Issues {
	var iss Issues
	for _, f := range r.def.Fields {
		raw, ok := src[f.Key]
		if !ok || raw == nil {
			continue
		}
		v, err := f.Caster.Cast(raw)
		if err != nil {
			iss = AppendIssues(iss, castIssue(at.Field(f.Key), f, err))
			if failFast {
				return iss
			}
			continue
		}
		r.values[f.Key] = v
	}
	return iss
}

func castIssue(at pathRef, f ScalarField, err error) Issue {
	typ := string(f.Type)
	var ce *cast.Error
	if typ == "" && errors.As(err, &ce) {
		typ = ce.Type
	}
	it := at.Issue(CodeInvalidCast, i18n.T(CodeInvalidCast, map[string]string{"type": typ}), map[string]any{"type": typ})
	it.Cause = err
	return it
}

// castEmbed threads validation of one embed field through cascade. Nested
// issues keep their full path from the parser root.
func (r *Record) castEmbed(e EmbedField, many bool, src map[string]any, at pathRef, failFast bool, cascade cascadeFunc) Issues {
	raw, ok := src[e.Key]
	if !ok || raw == nil {
		return nil
	}
	fieldAt := at.Field(e.Key)
	if !many {
		m, ok := asObject(raw)
		if !ok {
			return Issues{expectedIssue(fieldAt, "expected object")}
		}
		sub, iss := cascade(e.Ref, m, fieldAt)
		if len(iss) > 0 {
			return iss
		}
		r.one[e.Key] = sub
		return nil
	}
	items, ok := asSequence(raw)
	if !ok {
		return Issues{expectedIssue(fieldAt, "expected array")}
	}
	var iss Issues
	subs := make([]*Record, 0, len(items))
	for i, item := range items {
		elemAt := fieldAt.Index(i)
		m, ok := asObject(item)
		if !ok {
			iss = AppendIssues(iss, expectedIssue(elemAt, "expected object"))
			if failFast {
				return iss
			}
			continue
		}
		sub, subIss := cascade(e.Ref, m, elemAt)
		if len(subIss) > 0 {
			iss = AppendIssues(iss, subIss...)
			if failFast {
				return iss
			}
			continue
		}
		subs = append(subs, sub)
	}
	if len(iss) > 0 {
		return iss
	}
	r.many[e.Key] = subs
	return nil
}

func expectedIssue(at pathRef, hint string) Issue {
	it := at.Issue(CodeInvalidType, i18n.T(CodeInvalidType, nil), nil)
	it.Hint = hint
	return it
}
