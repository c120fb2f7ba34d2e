package render

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text", "hello, world", "hello, world"},
		{"empty", "", ""},
		{"colour codes", "\x1b[31mred\x1b[0m text", "red text"},
		{"cursor movement", "a\x1b[10;20Hb", "ab"},
		{"clear screen", "\x1b[2Jgone?", "gone?"},
		{"osc title", "\x1b]0;pwned\x07body", "body"},
		{"bell and backspace", "ding\x07\x08!", "ding!"},
		{"newline and tab kept", "line one\n\tline two", "line one\n\tline two"},
		{"carriage return dropped", "over\rwrite", "overwrite"},
		{"unicode preserved", "안녕하세요 👋", "안녕하세요 👋"},
		{"html is not terminal markup", "<b>bold</b> & co", "<b>bold</b> & co"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.expected {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSingleLine(t *testing.T) {
	if got := SingleLine("first\nsecond\t third  "); got != "first second third" {
		t.Errorf("SingleLine() = %q", got)
	}
}

func TestLinkify(t *testing.T) {
	got := Linkify("see https://example.com/a?b=1 and http://x.org")
	if !strings.Contains(got, xansi.SetHyperlink("https://example.com/a?b=1")+"https://example.com/a?b=1"+xansi.ResetHyperlink()) {
		t.Errorf("first URL not linked: %q", got)
	}
	if !strings.Contains(got, xansi.SetHyperlink("http://x.org")+"http://x.org"+xansi.ResetHyperlink()) {
		t.Errorf("second URL not linked: %q", got)
	}
	if plain := xansi.Strip(got); plain != "see https://example.com/a?b=1 and http://x.org" {
		t.Errorf("visible text changed: %q", plain)
	}
}

func TestLinkify_SanitizesFirst(t *testing.T) {
	got := Linkify("\x1b]8;;http://evil\x07click\x1b]8;;\x07 me")
	if strings.Contains(got, "evil") {
		t.Errorf("embedded hyperlink survived: %q", got)
	}
	if got != "click me" {
		t.Errorf("Linkify() = %q, want %q", got, "click me")
	}
}

func TestLinkify_NoURL(t *testing.T) {
	if got := Linkify("ftp://not-linked"); got != "ftp://not-linked" {
		t.Errorf("Linkify() = %q", got)
	}
}

func TestURLs(t *testing.T) {
	urls := URLs("a https://one.io b https://two.io/x")
	if len(urls) != 2 || urls[0] != "https://one.io" || urls[1] != "https://two.io/x" {
		t.Errorf("URLs() = %v", urls)
	}
}

func TestInitial(t *testing.T) {
	tests := map[string]string{
		"bob":    "B",
		"  eve ": "E",
		"élodie": "É",
		"":       "?",
	}
	for in, want := range tests {
		if got := Initial(in); got != want {
			t.Errorf("Initial(%q) = %q, want %q", in, got, want)
		}
	}
}
