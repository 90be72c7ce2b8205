package defparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stoewer/go-strcase"

	"github.com/Elonsoft/defparser/cast"
	"github.com/Elonsoft/defparser/internal/ir"
)

// CodeInvalidName reports a parser name that yields no record name.
const CodeInvalidName = "invalid_parser_name"

// RootName derives the root record name from a parser name,
// e.g. "user_profile" -> "UserProfile".
func RootName(parser string) string { return strcase.UpperCamelCase(parser) }

// ChildName derives a nested record name from its parent and key,
// e.g. ("User", "home_address") -> "User.HomeAddress".
func ChildName(parent, key string) string {
	seg := strcase.UpperCamelCase(key)
	if seg == "" {
		seg = key
	}
	return parent + "." + seg
}

// OperationName is the entry point name exposed for a parser,
// e.g. "UserProfile" -> "parse_user_profile".
func OperationName(parser string) string { return "parse_" + strcase.SnakeCase(parser) }

// Compile turns a schema literal into record definitions, root first and
// every nested level after its parent in ascending key order. It fails with
// a *SchemaError when a field shape cannot be classified, an array field does
// not hold exactly one schema, a type tag is unknown, or two levels would
// receive the same name.
func Compile(name string, lit any) ([]*Definition, error) {
	root := RootName(name)
	if strings.TrimSpace(root) == "" {
		return nil, newSchemaError(name, nil, CodeInvalidName, "parser name %q yields no record name", name)
	}
	obj, err := ir.Build(lit)
	if err != nil {
		var ie *ir.Error
		if errors.As(err, &ie) {
			return nil, newSchemaError(name, ie.Path, ie.Code, "%s", ie.Message)
		}
		return nil, err
	}
	c := &compiler{parser: name, names: map[string][]string{}}
	if _, err := c.compile(root, nil, obj); err != nil {
		return nil, err
	}
	return c.out, nil
}

type compiler struct {
	parser string
	names  map[string][]string // qualified name -> path that claimed it
	out    []*Definition
}

func (c *compiler) fail(path []string, code, format string, args ...any) error {
	return newSchemaError(c.parser, path, code, format, args...)
}

func (c *compiler) compile(qname string, path []string, obj *ir.Object) (*Definition, error) {
	if prev, dup := c.names[qname]; dup {
		return nil, c.fail(path, CodeDuplicateName, "record name %q collides with %q", qname, strings.Join(prev, "."))
	}
	c.names[qname] = path
	def := &Definition{Name: qname, Path: path}
	c.out = append(c.out, def)

	for _, f := range obj.Fields {
		fp := append(append([]string(nil), path...), f.Name)
		switch f.Kind {
		case ir.KindScalar:
			t := cast.Type(f.Type)
			cs, ok := cast.Lookup(t)
			if !ok {
				return nil, c.fail(fp, CodeUnknownType, "unknown type %q", f.Type)
			}
			def.Fields = append(def.Fields, ScalarField{Key: f.Name, Type: t, Caster: cs})
		case ir.KindCaster:
			def.Fields = append(def.Fields, ScalarField{Key: f.Name, Caster: f.Caster})
		case ir.KindEmbedOne, ir.KindEmbedMany:
			child, err := c.compile(ChildName(qname, f.Name), fp, f.Object)
			if err != nil {
				return nil, err
			}
			ef := EmbedField{Key: f.Name, Ref: child}
			if f.Kind == ir.KindEmbedOne {
				def.EmbedsOne = append(def.EmbedsOne, ef)
			} else {
				def.EmbedsMany = append(def.EmbedsMany, ef)
			}
		case ir.KindPredefinedOne, ir.KindPredefinedMany:
			ref, ok := f.Ref.(*Definition)
			if !ok || ref == nil {
				return nil, c.fail(fp, CodeInvalidReference, "embed directive does not reference a defined parser")
			}
			ef := EmbedField{Key: f.Name, Ref: ref, Predefined: true}
			if f.Kind == ir.KindPredefinedOne {
				def.EmbedsOne = append(def.EmbedsOne, ef)
			} else {
				def.EmbedsMany = append(def.EmbedsMany, ef)
			}
		default:
			panic(fmt.Sprintf("defparser: unclassified field %q (%v)", f.Name, f.Kind))
		}
	}
	return def, nil
}
