package defparser

import "github.com/Elonsoft/defparser/cast"

// Schema is the canonical schema literal. Values are one of:
//
//   - a type tag (cast.Type or a plain string such as "date")
//   - a cast.Caster
//   - a nested Schema (or any map) for a single embedded record
//   - a one-element sequence holding a nested Schema for an array of records
//   - EmbedsOne(p) / EmbedsMany(p) pointing at an already defined parser
//
// map[any]any and maps keyed by Atom are accepted wherever a Schema is.
type Schema map[string]any

// Atom is the symbolic form of a key. Atom("x") and "x" address the same
// field; when a map carries both, the plain string form wins.
type Atom string

// Type tags re-exported for schema literals.
const (
	String        = cast.String
	Integer       = cast.Integer
	ID            = cast.ID
	Float         = cast.Float
	Boolean       = cast.Boolean
	Binary        = cast.Binary
	Map           = cast.Map
	Any           = cast.Any
	Date          = cast.Date
	Time          = cast.Time
	NaiveDatetime = cast.NaiveDatetime
	UTCDatetime   = cast.UTCDatetime
	UUID          = cast.UUID
	BinaryID      = cast.BinaryID
)

// ValidateOpt bundles validation options.
type ValidateOpt struct {
	// FailFast stops at the first issue. The default collects every invalid
	// field in one pass.
	FailFast bool
	// RejectDuplicateKeys reports every object key that occurs more than once
	// in a JSON document (ParseJSON only). Decoders otherwise keep the last.
	RejectDuplicateKeys bool
}

func lastOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}
