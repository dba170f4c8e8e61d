package compose

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Data is the per-render substitution source. It is never mutated.
type Data map[string]any

// placeholderRE matches {{ identifier }} with optional inner whitespace.
var placeholderRE = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Resolve replaces every {{key}} token in value with data[key] in string
// form. Absent keys and nil values resolve to the empty string. Text that
// only resembles a token (for example "{{ a b }}") is left as is.
func Resolve(value string, data Data) string {
	if !strings.Contains(value, "{{") {
		return value
	}
	return placeholderRE.ReplaceAllStringFunc(value, func(tok string) string {
		key := placeholderRE.FindStringSubmatch(tok)[1]
		v, ok := data[key]
		if !ok {
			return ""
		}
		return stringify(v)
	})
}

// Tokens returns the identifiers referenced by value, in order of
// appearance and without duplicates.
func Tokens(value string) []string {
	var keys []string
	seen := make(map[string]bool)
	for _, m := range placeholderRE.FindAllStringSubmatch(value, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			keys = append(keys, m[1])
		}
	}
	return keys
}

// DefinitionTokens returns every identifier referenced by the
// placeholder-eligible fields of def.
func DefinitionTokens(def *Definition) []string {
	var fields []string
	if def.Background != nil {
		fields = append(fields, *def.Background)
	}
	for _, el := range def.Elements {
		switch e := el.(type) {
		case ImageElement:
			fields = append(fields, e.Source)
			if e.Border != nil {
				fields = append(fields, e.Border.Color)
			}
		case RectangleElement:
			fields = append(fields, e.Color)
		case TextElement:
			fields = append(fields, e.Color, e.Text, e.Font)
		}
	}

	var keys []string
	seen := make(map[string]bool)
	for _, f := range fields {
		for _, k := range Tokens(f) {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// stringify converts a decoded JSON value (or any Go value a caller put in
// Data) to the form it takes inside a resolved string.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = stringify(p)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(x, ",")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
