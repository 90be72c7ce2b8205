package i18n

import "sync"

// Translator retrieves localized messages for issue codes.
// data provides optional metadata to embed in the message (for example,
// "type" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "invalid_cast":
			if typ := data["type"]; typ != "" {
				return typ + " に変換できません"
			}
			return "値が不正です"
		case "parse_error":
			return "解析エラー"
		case "duplicate_key":
			return "キーが重複しています"
		case "unsupported_field_shape":
			return "サポートされていないフィールド形式です"
		case "invalid_array_field":
			return "配列フィールドはスキーマを1つだけ含む必要があります"
		case "unknown_type":
			return "未知の型です"
		case "duplicate_record_name":
			return "レコード名が重複しています"
		case "empty_field_name":
			return "フィールド名が空です"
		case "invalid_field_name":
			return "フィールド名は文字列である必要があります"
		case "invalid_parser_name":
			return "パーサー名が不正です"
		case "schema_not_object":
			return "スキーマはマップである必要があります"
		case "invalid_reference":
			return "参照が不正です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "is invalid"
		case "invalid_cast":
			if typ := data["type"]; typ != "" {
				return "is invalid (expected " + typ + ")"
			}
			return "is invalid"
		case "parse_error":
			return "parse error"
		case "duplicate_key":
			return "is duplicated"
		case "unsupported_field_shape":
			return "unsupported field shape"
		case "invalid_array_field":
			return "array field must contain exactly one schema"
		case "unknown_type":
			return "unknown type"
		case "duplicate_record_name":
			return "duplicate record name"
		case "empty_field_name":
			return "field name must not be empty"
		case "invalid_field_name":
			return "field name must be a string"
		case "invalid_parser_name":
			return "invalid parser name"
		case "schema_not_object":
			return "schema must be a map"
		case "invalid_reference":
			return "invalid record reference"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
