package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts CamelCase to snake_case
// Handles acronyms properly (HTTPRequest -> http_request)
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Add underscore before uppercase letter if:
				// 1. Previous char is lowercase or a digit
				// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
				if unicode.IsLower(prev) || unicode.IsDigit(prev) {
					result.WriteRune('_')
				} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToKebabCase converts CamelCase to kebab-case (DisplayWmsLayer -> display-wms-layer)
func ToKebabCase(s string) string {
	return strings.ReplaceAll(ToSnakeCase(s), "_", "-")
}

// unfriendlySeparators are dropped from friendly names; the next character is upper-cased
const unfriendlySeparators = " ,()\n\t-"

// Unfriendly turns a display title into a type name
// ("Display a map (offline)" -> "DisplayAMapOffline")
func Unfriendly(friendly string) string {
	var result strings.Builder
	capitalizeNext := false

	for _, r := range friendly {
		if strings.ContainsRune(unfriendlySeparators, r) {
			capitalizeNext = true
			continue
		}
		if capitalizeNext {
			r = unicode.ToUpper(r)
		}
		result.WriteRune(r)
		capitalizeNext = false
	}
	return result.String()
}
