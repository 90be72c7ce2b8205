package defparser

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Elonsoft/defparser/cast"
	"github.com/Elonsoft/defparser/internal/keymap"
)

// Directive keys recognized in schema documents. A mapping whose only key is
// one of these embeds a parser already defined in the registry:
//
//	owner: {$embeds_one: user}
//	pets:  {$embeds_many: pet}
const (
	DirectiveEmbedsOne  = "$embeds_one"
	DirectiveEmbedsMany = "$embeds_many"
)

// LoadSchemaYAML reads a schema literal from a YAML document. String values
// become type tags and directives are resolved against reg (which may be nil
// when the document has none).
func LoadSchemaYAML(data []byte, reg *Registry) (Schema, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("defparser: read yaml schema: %w", err)
	}
	return literalFromDocument(doc, reg)
}

// LoadSchemaJSON reads a schema literal from a JSON document.
func LoadSchemaJSON(data []byte, reg *Registry) (Schema, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("defparser: read json schema: %w", err)
	}
	return literalFromDocument(doc, reg)
}

func literalFromDocument(doc any, reg *Registry) (Schema, error) {
	m, ok := keymap.Normalize(doc)
	if !ok {
		return nil, newSchemaError("", nil, CodeSchemaNotObject, "schema document must be a mapping, got %T", doc)
	}
	v, err := convertDocument(m, reg, nil)
	if err != nil {
		return nil, err
	}
	s, ok := v.(Schema)
	if !ok {
		return nil, newSchemaError("", nil, CodeSchemaNotObject, "schema document root cannot be a directive")
	}
	return s, nil
}

func convertDocument(v any, reg *Registry, path []string) (any, error) {
	if k, bad := keymap.NonStringKey(v); bad {
		return nil, newSchemaError("", path, CodeInvalidFieldName, "field name %v (%T) is not a string", k, k)
	}
	if m, ok := keymap.Normalize(v); ok {
		if len(m) == 1 {
			for k, target := range m {
				if k == DirectiveEmbedsOne || k == DirectiveEmbedsMany {
					return resolveDirective(k, target, reg, path)
				}
			}
		}
		out := make(Schema, len(m))
		for k, sub := range m {
			cv, err := convertDocument(sub, reg, append(append([]string(nil), path...), k))
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	}
	if items, ok := keymap.Slice(v); ok {
		out := make([]any, len(items))
		for i, it := range items {
			cv, err := convertDocument(it, reg, path)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}
	if s, ok := v.(string); ok {
		return cast.Type(s), nil
	}
	return v, nil
}

func resolveDirective(key string, target any, reg *Registry, path []string) (any, error) {
	name, ok := target.(string)
	if !ok || name == "" {
		return nil, newSchemaError("", path, CodeInvalidReference, "%s expects a parser name", key)
	}
	if reg == nil {
		return nil, newSchemaError("", path, CodeInvalidReference, "%s %q: no registry to resolve against", key, name)
	}
	p, ok := reg.Parser(name)
	if !ok {
		return nil, newSchemaError("", path, CodeInvalidReference, "%s %q: parser is not defined", key, name)
	}
	if key == DirectiveEmbedsMany {
		return EmbedsMany(p), nil
	}
	return EmbedsOne(p), nil
}
