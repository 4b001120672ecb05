package assistant

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

var (
	sentenceStartRe = regexp.MustCompile(`(?:^|\.\s+)[a-z]`)
	tehRe           = regexp.MustCompile(`\bteh\b`)
	definatelyRe    = regexp.MustCompile(`\bdefinately\b`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Polish tidies a streamed answer: it trims, capitalises sentence starts,
// fixes two common typos and collapses whitespace
func Polish(text string) string {
	polished := strings.TrimSpace(text)
	polished = sentenceStartRe.ReplaceAllStringFunc(polished, strings.ToUpper)
	polished = tehRe.ReplaceAllString(polished, "the")
	polished = definatelyRe.ReplaceAllString(polished, "definitely")
	polished = whitespaceRe.ReplaceAllString(polished, " ")
	return polished
}

// RenderHTML converts a markdown answer to HTML
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
