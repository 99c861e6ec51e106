package slug

import (
	"regexp"
	"strings"
	"unicode"
)

var dashRuns = regexp.MustCompile(`-{2,}`)

// Normalize canonicalizes text into a URL-safe identifier. It never
// fails; an input with no representable characters yields "".
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if unicode.IsSpace(r) || r == '_' {
			b.WriteByte('-')
			continue
		}
		if mapped, ok := asciiTable[r]; ok {
			b.WriteString(mapped)
			continue
		}
		b.WriteRune(r)
	}

	s := dashRuns.ReplaceAllString(b.String(), "-")
	s = strings.Trim(s, "-")
	return strings.ToLower(s)
}
