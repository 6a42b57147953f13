// Package sanitize reduces untrusted form and scraper text to plain text
// before it is stored or echoed into outgoing emails.
package sanitize

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML returns the visible text of s. Script and style bodies are
// dropped. Entity-encoded markup is decoded and stripped a second time so
// "&lt;b&gt;" does not survive as a tag.
func StripHTML(s string) string {
	out := textOf(s)
	if strings.Contains(out, "<") {
		out = textOf(out)
	}
	return strings.TrimSpace(out)
}

// Line strips markup, collapses whitespace to single spaces and truncates
// to max runes. max <= 0 disables truncation.
func Line(s string, max int) string {
	out := strings.Join(strings.Fields(StripHTML(s)), " ")
	if max > 0 && utf8.RuneCountInString(out) > max {
		out = strings.TrimSpace(string([]rune(out)[:max]))
	}
	return out
}

func textOf(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Text()
}
