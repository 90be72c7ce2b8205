package defparser

import (
	"bytes"
	"errors"
	"io"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/Elonsoft/defparser/cast"
	"github.com/Elonsoft/defparser/i18n"
	"github.com/Elonsoft/defparser/internal/jsondup"
	js "github.com/Elonsoft/defparser/jsonschema"
)

// Parser is the entry point bound to the root definition of a compiled
// schema. It holds no mutable state and is safe for concurrent use.
type Parser struct {
	name string
	op   string
	defs []*Definition
}

// NewParser compiles lit without registering it anywhere.
func NewParser(name string, lit any) (*Parser, error) {
	defs, err := Compile(name, lit)
	if err != nil {
		return nil, err
	}
	return &Parser{name: name, op: OperationName(name), defs: defs}, nil
}

// Name returns the declared parser name.
func (p *Parser) Name() string { return p.name }

// Operation returns the entry point name, e.g. "parse_user".
func (p *Parser) Operation() string { return p.op }

// Root returns the root definition.
func (p *Parser) Root() *Definition { return p.defs[0] }

// Definitions returns every compiled definition, root first.
func (p *Parser) Definitions() []*Definition { return append([]*Definition(nil), p.defs...) }

// Parse validates raw against the root definition.
func (p *Parser) Parse(raw any, opts ...ValidateOpt) (*Record, error) {
	return Validate(p.Root(), raw, opts...)
}

var errTrailingData = errors.New("unexpected data after the top-level value")

// ParseJSON decodes a JSON document and validates it. Numbers are kept as
// json.Number until their field caster converts them. The document must hold
// exactly one value.
func (p *Parser) ParseJSON(data []byte, opts ...ValidateOpt) (*Record, error) {
	if opt := lastOpt(opts); opt.RejectDuplicateKeys {
		if iss := duplicateKeyIssues(data, opt.FailFast); len(iss) > 0 {
			return nil, iss
		}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, parseIssue(err)
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errTrailingData
		}
		return nil, parseIssue(err)
	}
	return p.Parse(raw, opts...)
}

// ParseYAML decodes a YAML document and validates it.
func (p *Parser) ParseYAML(data []byte, opts ...ValidateOpt) (*Record, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, parseIssue(err)
	}
	return p.Parse(raw, opts...)
}

func duplicateKeyIssues(data []byte, failFast bool) Issues {
	limit := 0
	if failFast {
		limit = 1
	}
	dups, err := jsondup.Detect(data, limit)
	if err != nil {
		return parseIssue(err)
	}
	var iss Issues
	for _, d := range dups {
		iss = AppendIssues(iss, Issue{
			Path:    d.Pointer,
			Code:    CodeDuplicateKey,
			Message: i18n.T(CodeDuplicateKey, map[string]string{"key": d.Key}),
			Params:  map[string]any{"key": d.Key},
		})
	}
	return iss
}

func parseIssue(err error) Issues {
	return Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Hint: err.Error(), Cause: err}}
}

// JSONSchema projects the compiled tree into a JSON Schema. Unknown keys are
// ignored at run time, so every object allows additional properties.
func (p *Parser) JSONSchema() *js.Schema { return definitionSchema(p.Root()) }

func definitionSchema(def *Definition) *js.Schema {
	props := make(map[string]*js.Schema, len(def.Fields)+len(def.EmbedsOne)+len(def.EmbedsMany))
	for _, f := range def.Fields {
		props[f.Key] = scalarSchema(f)
	}
	for _, e := range def.EmbedsOne {
		props[e.Key] = definitionSchema(e.Ref)
	}
	for _, e := range def.EmbedsMany {
		props[e.Key] = &js.Schema{Type: "array", Items: definitionSchema(e.Ref)}
	}
	return &js.Schema{Title: def.Name, Type: "object", Properties: props, AdditionalProperties: true}
}

func scalarSchema(f ScalarField) *js.Schema {
	if f.Type != "" {
		return js.ForType(string(f.Type))
	}
	if a, ok := f.Caster.(*cast.Array); ok {
		items := &js.Schema{}
		if t, ok := a.Elem.(cast.Type); ok {
			items = js.ForType(string(t))
		}
		return &js.Schema{Type: "array", Items: items}
	}
	return &js.Schema{}
}

// Embed is an embedding directive pointing at an already defined parser.
type Embed struct {
	parser *Parser
	many   bool
}

// EmbedsOne embeds a single record of p's root definition.
func EmbedsOne(p *Parser) Embed { return Embed{parser: p} }

// EmbedsMany embeds a sequence of records of p's root definition.
func EmbedsMany(p *Parser) Embed { return Embed{parser: p, many: true} }

// IsMany reports whether the directive embeds a sequence.
func (e Embed) IsMany() bool { return e.many }

// Ref returns the referenced root *Definition, or nil.
func (e Embed) Ref() any {
	if e.parser == nil {
		return nil
	}
	return e.parser.Root()
}
