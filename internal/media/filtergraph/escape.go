package filtergraph

import "strings"

// Characters significant to the drawtext directive. Unescaped, any of these
// in transcript text can terminate the text argument early and inject filter
// syntax, so they are all escaped before caption text enters a node.
const escapable = `\':%,;[]=`

// EscapeText escapes caption text for use as a drawtext text value. The
// backslash itself is escaped first so the pass never double-escapes.
func EscapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	for _, r := range text {
		if strings.ContainsRune(escapable, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnescapeText reverses EscapeText. For any caption,
// UnescapeText(EscapeText(caption)) == caption.
func UnescapeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	if escaped {
		b.WriteByte('\\')
	}
	return b.String()
}
