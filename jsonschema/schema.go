package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	// Core
	Title  string `json:"title,omitempty"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`
}

// ForType projects a scalar type tag. Unknown tags accept anything.
func ForType(tag string) *Schema {
	switch tag {
	case "string":
		return &Schema{Type: "string"}
	case "integer", "id":
		return &Schema{Type: "integer"}
	case "float":
		return &Schema{Type: "number"}
	case "boolean":
		return &Schema{Type: "boolean"}
	case "binary":
		return &Schema{Type: "string", Format: "binary"}
	case "map":
		return &Schema{Type: "object"}
	case "date":
		return &Schema{Type: "string", Format: "date"}
	case "time":
		return &Schema{Type: "string", Format: "time"}
	case "naive_datetime", "utc_datetime":
		return &Schema{Type: "string", Format: "date-time"}
	case "uuid", "binary_id":
		return &Schema{Type: "string", Format: "uuid"}
	}
	return &Schema{}
}
