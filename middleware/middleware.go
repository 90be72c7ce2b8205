// Package middleware validates HTTP request bodies with a defparser.Parser.
// The handlers are plain net/http middleware and plug into chi routers.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/Elonsoft/defparser"
)

// DefaultMaxBodyBytes bounds request bodies when ValidateJSON gets no limit.
const DefaultMaxBodyBytes = 1 << 20

type ctxKeyRecord struct{}

// ContextWithRecord attaches a validated record to the context.
func ContextWithRecord(ctx context.Context, rec *defparser.Record) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, rec)
}

// RecordFromContext retrieves the record stored by ValidateJSON.
func RecordFromContext(ctx context.Context) (*defparser.Record, bool) {
	rec, ok := ctx.Value(ctxKeyRecord{}).(*defparser.Record)
	return rec, ok
}

// DefaultValidateOpt is the recommended default for HTTP JSON boundaries:
// duplicate keys are errors.
func DefaultValidateOpt() defparser.ValidateOpt {
	return defparser.ValidateOpt{RejectDuplicateKeys: true}
}

// ErrorPayload shapes Issues for JSON responses: messages grouped by field
// path under "errors", plus the full issue list.
func ErrorPayload(iss defparser.Issues) map[string]any {
	list := make([]map[string]any, 0, len(iss))
	for _, it := range iss {
		item := map[string]any{"path": it.Path, "code": it.Code, "message": it.Message}
		if it.Hint != "" {
			item["hint"] = it.Hint
		}
		list = append(list, item)
	}
	return map[string]any{"errors": iss.Fields(), "issues": list}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ValidateJSON parses the request body with p and stores the record in the
// request context. Invalid documents are answered with 422 and the Issues
// payload, undecodable ones with 400 and bodies over maxBytes
// (DefaultMaxBodyBytes when <= 0) with 413.
func ValidateJSON(p *defparser.Parser, maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, err := Parse(w, r, p, maxBytes)
			if err != nil {
				WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithRecord(r.Context(), rec)))
		})
	}
}

// Parse reads at most maxBytes (DefaultMaxBodyBytes when <= 0) of the
// request body and validates it with p.
func Parse(w http.ResponseWriter, r *http.Request, p *defparser.Parser, maxBytes int64) (*defparser.Record, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return nil, err
	}
	return p.ParseJSON(body, DefaultValidateOpt())
}

// WriteError maps a Parse error onto a response.
func WriteError(w http.ResponseWriter, err error) {
	if iss, ok := defparser.AsIssues(err); ok {
		status := http.StatusUnprocessableEntity
		if len(iss) == 1 && iss[0].Code == defparser.CodeParseError {
			status = http.StatusBadRequest
		}
		WriteJSON(w, status, ErrorPayload(iss))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		WriteJSON(w, http.StatusRequestEntityTooLarge, map[string]any{"error": "request body too large"})
		return
	}
	WriteJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
}
