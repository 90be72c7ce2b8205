package defparser_test

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elonsoft/defparser"
)

type tag struct {
	Value int64 `defparser:"value"`
}

type address struct {
	City string `defparser:"city"`
}

type user struct {
	Name      string    `defparser:"name"`
	Birthdate time.Time `defparser:"birthdate"`
	Address   *address  `defparser:"address"`
	Tags      []tag     `defparser:"tags"`
}

func TestRecord_NewRecordIsZero(t *testing.T) {
	p := mustParser(t, "user", userSchema())
	rec := defparser.NewRecord(p.Root())
	assert.Equal(t, map[string]any{
		"name":      nil,
		"birthdate": nil,
		"address":   nil,
		"tags":      []any{},
	}, rec.Map())
}

func TestRecord_Decode(t *testing.T) {
	p := mustParser(t, "user", userSchema())
	rec, err := p.Parse(map[string]any{
		"name":      "Ann",
		"birthdate": "1990-01-02",
		"address":   map[string]any{"city": "Oslo"},
		"tags":      []any{map[string]any{"value": "4"}},
	})
	require.NoError(t, err)

	var u user
	require.NoError(t, rec.Decode(&u))
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, 1990, u.Birthdate.Year())
	require.NotNil(t, u.Address)
	assert.Equal(t, "Oslo", u.Address.City)
	assert.Equal(t, []tag{{Value: 4}}, u.Tags)
}

func TestRecord_MarshalJSON(t *testing.T) {
	p := mustParser(t, "user", defparser.Schema{
		"name": defparser.String,
		"tags": []any{defparser.Schema{"value": defparser.Integer}},
	})
	rec, err := p.Parse(map[string]any{"tags": []any{map[string]any{"value": "9"}}})
	require.NoError(t, err)

	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": null, "tags": [{"value": 9}]}`, string(b))
}
