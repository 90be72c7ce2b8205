package cast_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elonsoft/defparser/cast"
)

func TestBuiltins_Accept(t *testing.T) {
	cases := []struct {
		name string
		typ  cast.Type
		in   any
		want any
	}{
		{"string", cast.String, "hi", "hi"},
		{"string from bytes", cast.String, []byte("hi"), "hi"},
		{"integer from int", cast.Integer, 42, int64(42)},
		{"integer from string", cast.Integer, " 7 ", int64(7)},
		{"integer keeps base 10", cast.Integer, "010", int64(10)},
		{"integer from whole float", cast.Integer, 3.0, int64(3)},
		{"integer from json.Number", cast.Integer, json.Number("12"), int64(12)},
		{"id", cast.ID, "5", int64(5)},
		{"float from string", cast.Float, "1.5", 1.5},
		{"float from int", cast.Float, 2, 2.0},
		{"boolean", cast.Boolean, true, true},
		{"boolean from string", cast.Boolean, "false", false},
		{"binary", cast.Binary, "ab", []byte("ab")},
		{"map", cast.Map, map[any]any{"a": 1}, map[string]any{"a": 1}},
		{"any", cast.Any, []int{1}, []int{1}},
		{"date", cast.Date, "1990-01-01", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"date from map", cast.Date, map[string]any{"year": 2020, "month": "2", "day": 29}, time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"time", cast.Time, "13:45:10", time.Date(0, 1, 1, 13, 45, 10, 0, time.UTC)},
		{"naive datetime drops offset", cast.NaiveDatetime, "2020-01-02T03:04:05+02:00", time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)},
		{"utc datetime", cast.UTCDatetime, "2020-01-02T03:04:05.123+02:00", time.Date(2020, 1, 2, 1, 4, 5, 0, time.UTC)},
		{"uuid", cast.UUID, "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
		{"binary_id", cast.BinaryID, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.typ.Cast(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBuiltins_Reject(t *testing.T) {
	cases := []struct {
		name string
		typ  cast.Type
		in   any
	}{
		{"string from int", cast.String, 1},
		{"integer from garbage", cast.Integer, "bad"},
		{"integer from bool", cast.Integer, true},
		{"integer from fraction", cast.Integer, 1.5},
		{"float from bool", cast.Float, false},
		{"boolean from int", cast.Boolean, 1},
		{"map from slice", cast.Map, []any{1}},
		{"date garbage", cast.Date, "not a date"},
		{"date invalid day", cast.Date, map[string]any{"year": 2021, "month": 2, "day": 30}},
		{"time garbage", cast.Time, "25h"},
		{"uuid garbage", cast.UUID, "xyz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.typ.Cast(tc.in)
			require.Error(t, err)
			var ce *cast.Error
			require.True(t, errors.As(err, &ce))
		})
	}
}

func TestInteger_Range(t *testing.T) {
	accept := []struct {
		in   any
		want int64
	}{
		{uint64(math.MaxInt64), math.MaxInt64},
		{uint(7), 7},
		{float64(math.MinInt64), math.MinInt64},
		{json.Number("-9223372036854775808"), math.MinInt64},
	}
	for _, tc := range accept {
		got, err := cast.Integer.Cast(tc.in)
		require.NoError(t, err, "%T %v", tc.in, tc.in)
		assert.Equal(t, tc.want, got)
	}

	reject := []any{
		1e20,
		-1e20,
		float64(1 << 63),
		uint64(1<<63 + 5),
		uint64(math.MaxUint64),
		json.Number("18446744073709551615"),
		"9223372036854775808",
	}
	for _, in := range reject {
		_, err := cast.Integer.Cast(in)
		var ce *cast.Error
		require.True(t, errors.As(err, &ce), "%T %v", in, in)
		assert.Equal(t, "integer", ce.Type)
	}
}

func TestUnknownType(t *testing.T) {
	_, err := cast.Type("no_such_type").Cast("x")
	require.Error(t, err)
	_, ok := cast.Lookup("no_such_type")
	assert.False(t, ok)
}

func TestRegister_CustomTag(t *testing.T) {
	cast.Register("upper_test", cast.Func(func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return nil, &cast.Error{Type: "upper_test", Value: v}
		}
		return s + "!", nil
	}))
	got, err := cast.Type("upper_test").Cast("a")
	require.NoError(t, err)
	assert.Equal(t, "a!", got)
	assert.Contains(t, cast.Types(), cast.Type("upper_test"))
}

func TestArrayOf(t *testing.T) {
	c := cast.ArrayOf(cast.Integer)

	got, err := c.Cast([]any{"1", 2, nil})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2), nil}, got)

	_, err = c.Cast([]string{"1", "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "element 1")

	_, err = c.Cast("1,2")
	require.Error(t, err)
	_, err = c.Cast([]byte{1, 2})
	require.Error(t, err)
}
