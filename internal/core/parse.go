package core

import (
	"regexp"
	"strings"
)

// linkPattern matches [text](target) and [text](target "title").
// Nested brackets and reference-style links are not recognized.
var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^\s)]+)(?:\s+"([^"]*)")?\)`)

// LinkToken is one inline link occurrence in a document.
// Offset and End are byte offsets of the whole "[...](...)" span.
type LinkToken struct {
	DisplayText string
	RawTarget   string
	Title       string
	HasTitle    bool
	Offset      int
	End         int
}

// HasFragment reports whether the target carries a "#..." suffix.
func (t LinkToken) HasFragment() bool {
	return strings.Contains(t.RawTarget, "#")
}

// ParseLinkTokens returns every inline link in text, in order.
func ParseLinkTokens(text string) []LinkToken {
	matches := linkPattern.FindAllStringSubmatchIndex(text, -1)
	out := make([]LinkToken, 0, len(matches))
	for _, m := range matches {
		tok := LinkToken{
			DisplayText: text[m[2]:m[3]],
			RawTarget:   text[m[4]:m[5]],
			Offset:      m[0],
			End:         m[1],
		}
		if m[6] >= 0 {
			tok.Title = text[m[6]:m[7]]
			tok.HasTitle = true
		}
		out = append(out, tok)
	}
	return out
}

// splitFragment splits "target#frag" into ("target", "#frag").
func splitFragment(target string) (string, string) {
	if idx := strings.Index(target, "#"); idx >= 0 {
		return target[:idx], target[idx:]
	}
	return target, ""
}
