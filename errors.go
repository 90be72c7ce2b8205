package defparser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Elonsoft/defparser/i18n"
	"github.com/Elonsoft/defparser/internal/ir"
)

// Issue codes reported by Validate.
const (
	CodeInvalidType  = "invalid_type"  // a map or sequence was expected
	CodeInvalidCast  = "invalid_cast"  // a scalar caster rejected the value
	CodeParseError   = "parse_error"   // the raw document could not be decoded
	CodeDuplicateKey = "duplicate_key" // a JSON object repeats a key
)

// Schema error codes reported by Compile and Define.
const (
	CodeUnsupportedShape = ir.CodeUnsupportedShape
	CodeInvalidArray     = ir.CodeInvalidArray
	CodeEmptyFieldName   = ir.CodeEmptyName
	CodeInvalidFieldName = ir.CodeInvalidName
	CodeSchemaNotObject  = ir.CodeNotObject
	CodeUnknownType      = "unknown_type"
	CodeDuplicateName    = "duplicate_record_name"
	CodeInvalidReference = "invalid_reference"
)

// Issue represents a single invalid field.
type Issue struct {
	Path    string // JSON Pointer (for example: /tags/1/value).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected shapes, etc.
	Cause   error  // Optional: underlying error (e.g. *cast.Error).
	// Params carries structured parameters (e.g. {"type": "integer"}) for i18n
	// and callers that render their own messages.
	Params map[string]any
}

// Issues is the aggregated result of a failed validation. It implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_cast at /tags/1/value
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Fields groups messages by field path.
func (iss Issues) Fields() map[string][]string {
	out := make(map[string][]string, len(iss))
	for _, it := range iss {
		out[it.Path] = append(out[it.Path], it.Message)
	}
	return out
}

// Paths returns the distinct issue paths in ascending order.
func (iss Issues) Paths() []string {
	seen := make(map[string]struct{}, len(iss))
	out := make([]string, 0, len(iss))
	for _, it := range iss {
		if _, ok := seen[it.Path]; ok {
			continue
		}
		seen[it.Path] = struct{}{}
		out = append(out, it.Path)
	}
	sort.Strings(out)
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrParserExists is returned when a parser name is defined twice.
var ErrParserExists = errors.New("defparser: parser already defined")

// SchemaError reports a schema literal that cannot be compiled. It prevents
// the parser from being defined.
type SchemaError struct {
	Parser  string
	Path    []string // keys from the root of the literal
	Code    string
	Message string // localized message for Code
	Detail  string // the offending names or values, not localized
}

func newSchemaError(parser string, path []string, code, format string, args ...any) *SchemaError {
	return &SchemaError{
		Parser:  parser,
		Path:    path,
		Code:    code,
		Message: i18n.T(code, nil),
		Detail:  fmt.Sprintf(format, args...),
	}
}

func (e *SchemaError) Error() string {
	where := e.Parser
	if len(e.Path) > 0 {
		where += "." + strings.Join(e.Path, ".")
	}
	text := e.Detail
	if text == "" {
		text = e.Message
	}
	return fmt.Sprintf("defparser: %s: %s: %s", where, e.Code, text)
}

// AsSchemaError extracts a *SchemaError from err.
func AsSchemaError(err error) (*SchemaError, bool) {
	var se *SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
