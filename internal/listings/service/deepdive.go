package service

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Sections of the generated deep dive that duplicate the page's own call to action.
var droppedSections = []string{"ready to move on this deal?", "about this business"}

// Links that point away from the gated page.
var droppedLinkPrefixes = []string{"view full listing", "need sba financing?", "view on broker site"}

// SanitizeDeepDive removes scripts, inline handlers, duplicate call-to-action
// sections and outbound broker links from generated deep dive HTML.
func SanitizeDeepDive(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", err
	}
	body := doc.Find("body")

	body.Find("script, style, iframe, object, embed, form").Remove()

	body.Find("h2, h3").Each(func(_ int, heading *goquery.Selection) {
		title := strings.ToLower(strings.TrimSpace(heading.Text()))
		if !containsString(droppedSections, title) {
			return
		}
		for next := heading.Next(); next.Length() > 0; {
			if next.Is("h2, h3") || next.HasClass("bg-white") {
				break
			}
			following := next.Next()
			next.Remove()
			next = following
		}
		heading.Remove()
	})

	body.Find("a, button").Each(func(_ int, el *goquery.Selection) {
		text := strings.ToLower(strings.TrimSpace(el.Text()))
		for _, prefix := range droppedLinkPrefixes {
			if strings.HasPrefix(text, prefix) {
				el.Remove()
				return
			}
		}
	})

	body.Find("*").Each(func(_ int, el *goquery.Selection) {
		for _, node := range el.Nodes {
			kept := node.Attr[:0]
			for _, attr := range node.Attr {
				if strings.HasPrefix(strings.ToLower(attr.Key), "on") {
					continue
				}
				if attr.Key == "href" && strings.HasPrefix(strings.ToLower(strings.TrimSpace(attr.Val)), "javascript:") {
					continue
				}
				kept = append(kept, attr)
			}
			node.Attr = kept
		}
	})

	html, err := body.Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(html), nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
