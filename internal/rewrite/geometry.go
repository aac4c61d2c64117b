package rewrite

import (
	"regexp"
	"strings"
)

// DefaultGeometryMethods are the GeometryEngine operations that also exist
// as extension methods on Geometry
var DefaultGeometryMethods = []string{
	"Area", "AreaGeodetic", "Boundary", "Buffer", "BufferGeodetic", "Clip",
	"ConvexHull", "Densify", "DensifyGeodetic", "Generalize", "IsSimple",
	"Length", "LengthGeodetic", "Project", "Simplify",
}

var engineCall = regexp.MustCompile(`\bGeometryEngine\.([A-Za-z_]\w*)\s*\(`)

// Geometry returns a Func rewriting GeometryEngine.Method(first, rest...) to
// first.Method(rest...) for the given methods. Nested calls are rewritten
// innermost first; a first argument that is not a plain member access chain
// is parenthesised.
func Geometry(methods []string) Func {
	if len(methods) == 0 {
		methods = DefaultGeometryMethods
	}
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return func(source string) string {
		return rewriteGeometry(source, set)
	}
}

func rewriteGeometry(source string, methods map[string]bool) string {
	// Later matches are nested in or follow earlier ones, so rewriting from
	// the end leaves every earlier match index valid.
	limit := len(source)
	for {
		locs := engineCall.FindAllStringSubmatchIndex(source[:limit], -1)
		if len(locs) == 0 {
			return source
		}
		loc := locs[len(locs)-1]
		limit = loc[0]

		method := source[loc[2]:loc[3]]
		if !methods[method] {
			continue
		}
		args, end, ok := splitArgs(source, loc[1])
		if !ok || len(args) == 0 || strings.TrimSpace(args[0]) == "" {
			continue
		}

		receiver := strings.TrimSpace(args[0])
		if !simpleReceiver(receiver) {
			receiver = "(" + receiver + ")"
		}
		rest := make([]string, 0, len(args)-1)
		for _, a := range args[1:] {
			rest = append(rest, strings.TrimSpace(a))
		}
		call := receiver + "." + method + "(" + strings.Join(rest, ", ") + ")"
		source = source[:loc[0]] + call + source[end:]
	}
}

// splitArgs splits the argument list starting after the opening parenthesis
// at start. It returns the raw arguments and the index just past the closing
// parenthesis. Brackets nested inside arguments and string or char literals
// are skipped.
func splitArgs(s string, start int) ([]string, int, bool) {
	var (
		args  []string
		depth int
		from  = start
	)
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			end, ok := skipLiteral(s, i)
			if !ok {
				return nil, 0, false
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				if c != ')' {
					return nil, 0, false
				}
				if arg := s[from:i]; strings.TrimSpace(arg) != "" || len(args) > 0 {
					args = append(args, arg)
				}
				return args, i + 1, true
			}
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[from:i])
				from = i + 1
			}
		}
	}
	return nil, 0, false
}

// skipLiteral returns the index of the closing quote of the string or char
// literal opening at i. Verbatim strings (@"...") escape quotes by doubling.
func skipLiteral(s string, i int) (int, bool) {
	quote := s[i]
	verbatim := quote == '"' && i > 0 && s[i-1] == '@'
	for j := i + 1; j < len(s); j++ {
		switch {
		case verbatim && s[j] == '"':
			if j+1 < len(s) && s[j+1] == '"' {
				j++
				continue
			}
			return j, true
		case !verbatim && s[j] == '\\':
			j++
		case s[j] == quote:
			return j, true
		case !verbatim && s[j] == '\n':
			return 0, false
		}
	}
	return 0, false
}

// simpleReceiver reports whether expr can take a member access without
// parentheses: identifiers joined by dots, each optionally followed by
// balanced call or index brackets
func simpleReceiver(expr string) bool {
	if expr == "" {
		return false
	}
	c := expr[0]
	if !(c == '_' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z') {
		return false
	}
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch c := expr[i]; {
		case c == '"' || c == '\'':
			end, ok := skipLiteral(expr, i)
			if !ok {
				return false
			}
			i = end
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case depth > 0:
		case c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z':
		default:
			return false
		}
	}
	return depth == 0
}
