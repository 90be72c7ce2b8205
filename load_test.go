package defparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elonsoft/defparser"
)

func TestLoadSchemaYAML(t *testing.T) {
	reg := defparser.NewRegistry()
	reg.MustDefine("pet", defparser.Schema{"name": defparser.String})

	lit, err := defparser.LoadSchemaYAML([]byte(`
name: string
birthdate: date
address:
  city: string
tags:
  - value: integer
best:
  $embeds_one: pet
pets:
  $embeds_many: pet
`), reg)
	require.NoError(t, err)

	p, err := reg.Define("owner", lit)
	require.NoError(t, err)
	root := p.Root()
	assert.Equal(t, []string{"address", "best", "birthdate", "name", "pets", "tags"}, root.Keys())

	rec, err := p.Parse(map[string]any{
		"pets": []any{map[string]any{"name": "Rex"}},
		"tags": []any{map[string]any{"value": "3"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pet", rec.Embeds("pets")[0].Definition().Name)
}

func TestLoadSchemaJSON(t *testing.T) {
	lit, err := defparser.LoadSchemaJSON([]byte(`{"id": "uuid", "items": [{"qty": "integer"}]}`), nil)
	require.NoError(t, err)
	defs, err := defparser.Compile("order", lit)
	require.NoError(t, err)
	assert.Equal(t, []string{"Order", "Order.Items"}, names(defs))
}

func TestLoadSchema_Errors(t *testing.T) {
	reg := defparser.NewRegistry()
	reg.MustDefine("pet", defparser.Schema{})
	cases := []struct {
		name string
		doc  string
		reg  *defparser.Registry
		code string
	}{
		{"not a mapping", "- a\n- b\n", reg, defparser.CodeSchemaNotObject},
		{"root directive", "$embeds_one: pet\n", reg, defparser.CodeSchemaNotObject},
		{"undefined parser", "best:\n  $embeds_one: ghost\n", reg, defparser.CodeInvalidReference},
		{"no registry", "best:\n  $embeds_many: pet\n", nil, defparser.CodeInvalidReference},
		{"target not a name", "best:\n  $embeds_one: [1]\n", reg, defparser.CodeInvalidReference},
		{"numeric key", "2024: date\nname: string\n", reg, defparser.CodeInvalidFieldName},
		{"nested numeric key", "address:\n  1: string\n", reg, defparser.CodeInvalidFieldName},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := defparser.LoadSchemaYAML([]byte(tc.doc), tc.reg)
			se, ok := defparser.AsSchemaError(err)
			require.True(t, ok, "got %v", err)
			assert.Equal(t, tc.code, se.Code)
		})
	}

	_, err := defparser.LoadSchemaYAML([]byte("a: [\n"), reg)
	assert.Error(t, err)
	_, err = defparser.LoadSchemaJSON([]byte("{"), reg)
	assert.Error(t, err)
}
