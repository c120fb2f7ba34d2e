// Package render turns untrusted server text into something safe to print on
// a terminal.
package render

import (
	"regexp"
	"strings"
	"unicode"

	xansi "github.com/charmbracelet/x/ansi"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Sanitize removes escape sequences and control characters from s. Newlines
// and tabs are kept so multi-line bodies survive.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	s = xansi.Strip(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r == '\r':
		case r < 32 || r == 127:
		case unicode.Is(unicode.Cc, r):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SingleLine sanitizes s and folds line breaks into spaces, for previews.
func SingleLine(s string) string {
	s = Sanitize(s)
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}

// URLs returns the http(s) URLs in s in order of appearance.
func URLs(s string) []string {
	return urlPattern.FindAllString(s, -1)
}

// Linkify sanitizes s and wraps every http(s) URL in an OSC 8 hyperlink.
// Terminals without hyperlink support show the URL text unchanged.
func Linkify(s string) string {
	s = Sanitize(s)
	return urlPattern.ReplaceAllStringFunc(s, func(u string) string {
		return xansi.SetHyperlink(u) + u + xansi.ResetHyperlink()
	})
}

// Initial is the avatar letter shown next to a username.
func Initial(username string) string {
	for _, r := range strings.TrimSpace(username) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
