// Package defparser compiles declarative, arbitrarily nested record shapes
// into named record definitions and casts untyped nested maps against them.
//
// A schema literal is compiled once, usually at package initialization:
//
//	var userParser = defparser.MustDefine("user", defparser.Schema{
//	    "name":      defparser.String,
//	    "birthdate": defparser.Date,
//	    "address":   defparser.Schema{"city": defparser.String},
//	    "tags":      []any{defparser.Schema{"value": defparser.Integer}},
//	})
//
// Compilation yields one Definition per nesting level ("User",
// "User.Address", "User.Tags") and binds the entry point "parse_user" to the
// root. Parsing walks the raw input recursively:
//
//	rec, err := userParser.Parse(map[string]any{"birthdate": "1990-01-01"})
//	if iss, ok := defparser.AsIssues(err); ok {
//	    for path, msgs := range iss.Fields() { ... } // e.g. "/tags/1/value"
//	}
//
// Design policy:
//   - Field shapes are classified once at compile time (internal/ir); the
//     validator only walks compiled definitions.
//   - Validation is pure and never stops at the first invalid field unless
//     ValidateOpt.FailFast is set. Problems are returned as Issues, never
//     panics; only a malformed definition panics.
//   - Scalar casting is delegated to the cast package.
package defparser
