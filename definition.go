package defparser

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Elonsoft/defparser/cast"
)

// Definition is the compiled, named description of one nesting level of a
// schema. Definitions are immutable once Compile returns and may be shared
// between goroutines.
type Definition struct {
	Name       string   // qualified name, e.g. "User.Address"
	Path       []string // keys from the parser root; empty for the root
	Fields     []ScalarField
	EmbedsOne  []EmbedField
	EmbedsMany []EmbedField
}

// ScalarField is a field cast by a single Caster.
type ScalarField struct {
	Key    string
	Type   cast.Type // empty when the schema supplied its own caster
	Caster cast.Caster
}

// EmbedField is a field holding one record or a sequence of records.
type EmbedField struct {
	Key        string
	Ref        *Definition
	Predefined bool // true for EmbedsOne/EmbedsMany directives
}

// Keys returns every declared key in ascending order.
func (d *Definition) Keys() []string {
	out := make([]string, 0, len(d.Fields)+len(d.EmbedsOne)+len(d.EmbedsMany))
	for _, f := range d.Fields {
		out = append(out, f.Key)
	}
	for _, e := range d.EmbedsOne {
		out = append(out, e.Key)
	}
	for _, e := range d.EmbedsMany {
		out = append(out, e.Key)
	}
	sort.Strings(out)
	return out
}

// String renders a one-line summary, e.g.
// "User{name:string tags:[]User.Tags}".
func (d *Definition) String() string {
	parts := make([]string, 0, len(d.Keys()))
	for _, f := range d.Fields {
		t := string(f.Type)
		if t == "" {
			t = fmt.Sprintf("%T", f.Caster)
		}
		parts = append(parts, f.Key+":"+t)
	}
	for _, e := range d.EmbedsOne {
		parts = append(parts, e.Key+":"+e.Ref.Name)
	}
	for _, e := range d.EmbedsMany {
		parts = append(parts, e.Key+":[]"+e.Ref.Name)
	}
	sort.Strings(parts)
	return d.Name + "{" + strings.Join(parts, " ") + "}"
}
