package cast

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	spfcast "github.com/spf13/cast"
)

func init() {
	Register(String, Func(castString))
	Register(Integer, Func(castInteger))
	Register(ID, Func(castInteger))
	Register(Float, Func(castFloat))
	Register(Boolean, Func(castBoolean))
	Register(Binary, Func(castBinary))
	Register(Map, Func(castMap))
	Register(Any, Func(func(v any) (any, error) { return v, nil }))
	Register(Date, Func(castDate))
	Register(Time, Func(castTime))
	Register(NaiveDatetime, Func(castNaiveDatetime))
	Register(UTCDatetime, Func(castUTCDatetime))
	Register(UUID, Func(castUUID))
	Register(BinaryID, Func(castUUID))
}

var (
	errNotWhole   = errors.New("not a whole number")
	errOutOfRange = errors.New("out of int64 range")
)

func castString(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case interface{ Int64() (int64, error) }:
		// json.Number is string-kinded but still a number
		return fail(String, v, nil)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return fail(String, v, nil)
}

// castInteger accepts integers, whole floats, json.Number and base-10 strings.
// Booleans are rejected even though they are trivially convertible.
func castInteger(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return fail(Integer, v, nil)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return fail(Integer, v, err)
		}
		return n, nil
	case float32:
		return wholeFloat(float64(x), v)
	case float64:
		return wholeFloat(x, v)
	case uint:
		return unsignedInt(uint64(x), v)
	case uint64:
		return unsignedInt(x, v)
	case uintptr:
		return unsignedInt(uint64(x), v)
	case interface{ Int64() (int64, error) }:
		n, err := x.Int64()
		if err != nil {
			return fail(Integer, v, err)
		}
		return n, nil
	}
	n, err := spfcast.ToInt64E(v)
	if err != nil {
		return fail(Integer, v, err)
	}
	return n, nil
}

func wholeFloat(f float64, raw any) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return fail(Integer, raw, errNotWhole)
	}
	// -2^63 is exact in float64; 2^63 is the first value past MaxInt64
	if f < math.MinInt64 || f >= -math.MinInt64 {
		return fail(Integer, raw, errOutOfRange)
	}
	return int64(f), nil
}

func unsignedInt(u uint64, raw any) (any, error) {
	if u > math.MaxInt64 {
		return fail(Integer, raw, errOutOfRange)
	}
	return int64(u), nil
}

func castFloat(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return fail(Float, v, nil)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return fail(Float, v, err)
		}
		return f, nil
	case interface{ Float64() (float64, error) }:
		f, err := x.Float64()
		if err != nil {
			return fail(Float, v, err)
		}
		return f, nil
	}
	f, err := spfcast.ToFloat64E(v)
	if err != nil {
		return fail(Float, v, err)
	}
	return f, nil
}

func castBoolean(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := spfcast.ToBoolE(strings.TrimSpace(x))
		if err != nil {
			return fail(Boolean, v, err)
		}
		return b, nil
	}
	return fail(Boolean, v, nil)
}

func castBinary(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return append([]byte(nil), x...), nil
	}
	return fail(Binary, v, nil)
}

// castMap copies any map into map[string]any, stringifying keys.
func castMap(v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return fail(Map, v, nil)
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key()
		if k.Kind() == reflect.Interface {
			k = k.Elem()
		}
		var ks string
		if k.Kind() == reflect.String {
			ks = k.String()
		} else {
			s, err := spfcast.ToStringE(k.Interface())
			if err != nil {
				return fail(Map, v, err)
			}
			ks = s
		}
		out[ks] = iter.Value().Interface()
	}
	return out, nil
}

const dateLayout = "2006-01-02"

var timeLayouts = []string{"15:04:05.999999999", "15:04:05", "15:04"}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

func castDate(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return midnight(x), nil
	case string:
		s := strings.TrimSpace(x)
		if t, err := time.Parse(dateLayout, s); err == nil {
			return t, nil
		}
		t, err := spfcast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			return fail(Date, v, err)
		}
		return midnight(t), nil
	}
	if parts, ok := intParts(v, "year", "month", "day"); ok {
		t := time.Date(parts[0], time.Month(parts[1]), parts[2], 0, 0, 0, 0, time.UTC)
		if t.Year() != parts[0] || int(t.Month()) != parts[1] || t.Day() != parts[2] {
			return fail(Date, v, errors.New("date out of range"))
		}
		return t, nil
	}
	return fail(Date, v, nil)
}

// castTime yields a time.Time on 0000-01-01 UTC carrying only the clock.
func castTime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return clock(x), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return clock(t), nil
			}
		}
		return fail(Time, v, errors.New("expected HH:MM[:SS[.fraction]]"))
	}
	if parts, ok := intParts(v, "hour", "minute", "second"); ok {
		if parts[0] < 0 || parts[0] > 23 || parts[1] < 0 || parts[1] > 59 || parts[2] < 0 || parts[2] > 59 {
			return fail(Time, v, errors.New("time out of range"))
		}
		return time.Date(0, 1, 1, parts[0], parts[1], parts[2], 0, time.UTC), nil
	}
	return fail(Time, v, nil)
}

// castNaiveDatetime keeps the wall clock and discards any zone offset.
func castNaiveDatetime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return wall(x), nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return wall(t), nil
		}
		t, err := spfcast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			return fail(NaiveDatetime, v, err)
		}
		return wall(t), nil
	}
	return fail(NaiveDatetime, v, nil)
}

// castUTCDatetime converts to UTC and truncates to whole seconds. Strings
// without an offset are read as UTC.
func castUTCDatetime(v any) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Truncate(time.Second), nil
	case string:
		s := strings.TrimSpace(x)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.Truncate(time.Second), nil
			}
		}
		t, err := spfcast.ToTimeInDefaultLocationE(s, time.UTC)
		if err != nil {
			return fail(UTCDatetime, v, err)
		}
		return t.UTC().Truncate(time.Second), nil
	}
	return fail(UTCDatetime, v, nil)
}

// castUUID returns the canonical lowercase textual form.
func castUUID(v any) (any, error) {
	switch x := v.(type) {
	case string:
		u, err := uuid.Parse(strings.TrimSpace(x))
		if err != nil {
			return fail(UUID, v, err)
		}
		return u.String(), nil
	case uuid.UUID:
		return x.String(), nil
	case [16]byte:
		return uuid.UUID(x).String(), nil
	case []byte:
		u, err := uuid.FromBytes(x)
		if err != nil {
			return fail(UUID, v, err)
		}
		return u.String(), nil
	}
	return fail(UUID, v, nil)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func clock(t time.Time) time.Time {
	return time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func wall(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// intParts reads integer components out of a string-keyed map, e.g.
// {"year": 1990, "month": "1", "day": 1}.
func intParts(v any, keys ...string) ([]int, bool) {
	m, err := castMap(v)
	if err != nil {
		return nil, false
	}
	mm := m.(map[string]any)
	out := make([]int, len(keys))
	for i, k := range keys {
		raw, ok := mm[k]
		if !ok {
			return nil, false
		}
		n, err := castInteger(raw)
		if err != nil {
			return nil, false
		}
		out[i] = int(n.(int64))
	}
	return out, true
}
