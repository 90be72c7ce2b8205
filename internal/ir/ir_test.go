package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elonsoft/defparser/cast"
)

type directive struct{ many bool }

func (d directive) IsMany() bool { return d.many }
func (d directive) Ref() any     { return "ref" }

func TestBuild_ClassifiesEveryShape(t *testing.T) {
	obj, err := Build(map[string]any{
		"name":    "string",
		"born":    cast.Date,
		"scores":  cast.ArrayOf(cast.Integer),
		"address": map[string]any{"city": "string"},
		"tags":    []any{map[string]any{"value": "integer"}},
		"owner":   directive{},
		"pets":    directive{many: true},
	})
	require.NoError(t, err)

	kinds := map[string]Kind{}
	for _, f := range obj.Fields {
		kinds[f.Name] = f.Kind
	}
	assert.Equal(t, map[string]Kind{
		"name":    KindScalar,
		"born":    KindScalar,
		"scores":  KindCaster,
		"address": KindEmbedOne,
		"tags":    KindEmbedMany,
		"owner":   KindPredefinedOne,
		"pets":    KindPredefinedMany,
	}, kinds)

	// sorted by name
	assert.Equal(t, "address", obj.Fields[0].Name)
	assert.Equal(t, "tags", obj.Fields[len(obj.Fields)-1].Name)
}

func TestBuild_Nested(t *testing.T) {
	obj, err := Build(map[string]any{"tags": []map[string]any{{"value": "integer"}}})
	require.NoError(t, err)
	require.Len(t, obj.Fields, 1)
	inner := obj.Fields[0].Object
	require.NotNil(t, inner)
	assert.Equal(t, "value", inner.Fields[0].Name)
	assert.Equal(t, "integer", inner.Fields[0].Type)
}

func TestBuild_Empty(t *testing.T) {
	obj, err := Build(map[string]any{})
	require.NoError(t, err)
	assert.Empty(t, obj.Fields)
}

func TestBuild_Errors(t *testing.T) {
	cases := []struct {
		name string
		lit  any
		code string
		path []string
	}{
		{"not a map", "string", CodeNotObject, nil},
		{"empty array", map[string]any{"a": []any{}}, CodeInvalidArray, []string{"a"}},
		{"two schemas", map[string]any{"a": []any{map[string]any{}, map[string]any{}}}, CodeInvalidArray, []string{"a"}},
		{"array of tags", map[string]any{"a": []any{"integer"}}, CodeInvalidArray, []string{"a"}},
		{"number", map[string]any{"a": map[string]any{"b": 42}}, CodeUnsupportedShape, []string{"a", "b"}},
		{"nil", map[string]any{"a": nil}, CodeUnsupportedShape, []string{"a"}},
		{"empty name", map[string]any{"": "string"}, CodeEmptyName, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.lit)
			var ie *Error
			require.True(t, errors.As(err, &ie), "got %v", err)
			assert.Equal(t, tc.code, ie.Code)
			assert.Equal(t, tc.path, ie.Path)
		})
	}
}
