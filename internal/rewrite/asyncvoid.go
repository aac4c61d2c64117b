package rewrite

import (
	"regexp"
	"strings"
)

const tasksUsing = "using System.Threading.Tasks;"

// asyncVoidDecl matches a method declaration returning async void. Groups:
// text up to void, whitespace, method name, parameter list.
var asyncVoidDecl = regexp.MustCompile(`(?m)^([ \t]*(?:(?:public|private|protected|internal|static|override|virtual|new|sealed|unsafe)[ \t]+)*async[ \t]+)void([ \t]+)([A-Za-z_]\w*)[ \t]*\(([^)]*)\)`)

var usingLine = regexp.MustCompile(`(?m)^using[ \t]+[\w.= ]+;[ \t]*\r?$`)

// isEventHandler reports whether a parameter list has the shape of an event
// handler: an object sender or an EventArgs argument
func isEventHandler(params string) bool {
	for _, p := range strings.Split(params, ",") {
		fields := strings.Fields(p)
		if len(fields) < 2 {
			continue
		}
		typ, name := fields[len(fields)-2], fields[len(fields)-1]
		if name == "sender" || strings.HasSuffix(typ, "EventArgs") {
			return true
		}
	}
	return false
}

// AsyncVoid turns non-event-handler async void methods into async Task
// methods. Statement calls to a converted method are discarded explicitly
// (_ = Name();) and the System.Threading.Tasks using is added when missing.
func AsyncVoid(source string) string {
	var (
		b         strings.Builder
		converted []string
		seen      = map[string]bool{}
		last      int
	)
	for _, m := range asyncVoidDecl.FindAllStringSubmatchIndex(source, -1) {
		if isEventHandler(source[m[8]:m[9]]) {
			continue
		}
		voidStart := m[3]
		b.WriteString(source[last:voidStart])
		b.WriteString("Task")
		last = voidStart + len("void")

		if name := source[m[6]:m[7]]; !seen[name] {
			seen[name] = true
			converted = append(converted, name)
		}
	}
	if len(converted) == 0 {
		return source
	}
	b.WriteString(source[last:])
	out := b.String()

	for _, name := range converted {
		call := regexp.MustCompile(`(?m)^([ \t]*)((?:this\.)?` + regexp.QuoteMeta(name) + `[ \t]*\([^;{}]*\)[ \t]*;)`)
		out = call.ReplaceAllString(out, "${1}_ = ${2}")
	}
	return ensureUsing(out, tasksUsing)
}

// ensureUsing adds a using directive after the last top-level using, or at
// the top of the file, when it is not already present
func ensureUsing(source, directive string) string {
	if strings.Contains(source, directive) {
		return source
	}
	eol := "\n"
	if strings.Contains(source, "\r\n") {
		eol = "\r\n"
	}
	locs := usingLine.FindAllStringIndex(source, -1)
	if len(locs) == 0 {
		return directive + eol + source
	}
	end := locs[len(locs)-1][1]
	for end > 0 && source[end-1] == '\r' {
		end--
	}
	return source[:end] + eol + directive + source[end:]
}
