package metadata

import "strings"

// ExtractImage returns the image path from a markdown image (![alt](path)) or
// an HTML image tag (<img src="path" />). Strings in neither form are returned
// trimmed but otherwise unchanged.
func ExtractImage(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "!") {
		closeIdx := strings.LastIndex(s, ")")
		openIdx := strings.LastIndex(s, "(")
		if closeIdx == -1 || openIdx == -1 || openIdx > closeIdx {
			return s
		}
		return s[openIdx+1 : closeIdx]
	}

	const marker = `src="`
	openIdx := strings.LastIndex(s, marker)
	if openIdx == -1 {
		return s
	}
	rest := s[openIdx+len(marker):]
	closeIdx := strings.Index(rest, `"`)
	if closeIdx == -1 {
		return rest
	}
	return rest[:closeIdx]
}
