package witschema

import (
	"strings"
	"unicode"
)

// toPascalCase converts kebab-case or snake_case to PascalCase:
// "piet-stroke-line" -> "PietStrokeLine".
func toPascalCase(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		result.WriteRune(unicode.ToUpper(runes[0]))
		result.WriteString(string(runes[1:]))
	}
	return result.String()
}

// toSnakeCase converts kebab-case, camelCase or PascalCase to snake_case.
// Acronyms stay together: "HTTPSConn" -> "https_conn".
func toSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if r == '-' {
			result.WriteRune('_')
			continue
		}
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			prevUpper := unicode.IsUpper(prev)
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prev != '-' && prev != '_' && (!prevUpper || nextLower) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}
	return strings.ToLower(result.String())
}
