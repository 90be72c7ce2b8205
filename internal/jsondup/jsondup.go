// Package jsondup finds object keys that occur more than once in a JSON
// document. Decoders keep the last occurrence silently, which hides
// conflicting input.
package jsondup

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Duplicate is a repeated key, addressed by the JSON Pointer of the key.
type Duplicate struct {
	Pointer string
	Key     string
}

type frame struct {
	object  bool
	keys    map[string]struct{}
	wantKey bool
	key     string // last key read in an object
	next    int    // next index in an array
	seg     string // segment of this container in its parent
}

// Detect scans data and returns the duplicates in document order. max > 0
// stops after that many. A syntax error is returned together with the
// duplicates found before it.
func Detect(data []byte, max int) ([]Duplicate, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		dups  []Duplicate
		stack []frame
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return dups, io.ErrUnexpectedEOF
			}
			return dups, nil
		}
		if err != nil {
			return dups, err
		}

		if d, ok := tok.(json.Delim); ok && (d == '}' || d == ']') {
			stack = stack[:len(stack)-1]
			continue
		}

		if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
			top := &stack[n-1]
			key, _ := tok.(string)
			if _, seen := top.keys[key]; seen {
				dups = append(dups, Duplicate{Pointer: pointer(stack, key), Key: key})
				if max > 0 && len(dups) >= max {
					return dups, nil
				}
			}
			top.keys[key] = struct{}{}
			top.key = key
			top.wantKey = false
			continue
		}

		// a value: scalar or the start of a container
		seg := ""
		if n := len(stack); n > 0 {
			top := &stack[n-1]
			if top.object {
				seg = top.key
				top.wantKey = true
			} else {
				seg = strconv.Itoa(top.next)
				top.next++
			}
		}
		if d, ok := tok.(json.Delim); ok {
			f := frame{object: d == '{', wantKey: d == '{', seg: seg}
			if f.object {
				f.keys = map[string]struct{}{}
			}
			stack = append(stack, f)
		}
	}
}

func pointer(stack []frame, key string) string {
	b := &strings.Builder{}
	for _, f := range stack[1:] {
		b.WriteByte('/')
		b.WriteString(escape(f.seg))
	}
	b.WriteByte('/')
	b.WriteString(escape(key))
	return b.String()
}

// escape '~' -> '~0', '/' -> '~1' per RFC6901
func escape(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}
