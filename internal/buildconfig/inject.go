package buildconfig

import "strings"

// NormalizeAdditionalData trims surrounding whitespace and terminates the
// result with a single newline. Interior lines are kept verbatim since
// indentation is significant to the indented Sass syntax. Empty input stays
// empty.
func NormalizeAdditionalData(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return s + "\n"
}

// Inject prepends data to a stylesheet source. A source that already starts
// with data is returned unchanged so repeated injection never duplicates it.
func Inject(source, data string) string {
	if data == "" || strings.HasPrefix(source, data) {
		return source
	}
	return data + source
}
