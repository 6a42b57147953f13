// Package classifier decides which scraped listings belong to a vertical and
// removes duplicates. It is pure: the same input always yields the same output.
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// PatternSpec is the configuration form of a pattern. NotFollowedBy expresses
// a negative lookahead, which RE2 does not support natively.
type PatternSpec struct {
	Expr          string `yaml:"expr" json:"expr"`
	NotFollowedBy string `yaml:"not_followed_by,omitempty" json:"not_followed_by,omitempty"`
}

// RuleSet is the allow and block configuration for one vertical.
type RuleSet struct {
	Allow []PatternSpec `yaml:"allow" json:"allow"`
	Block []PatternSpec `yaml:"block" json:"block"`
}

type pattern struct {
	source string
	re     *regexp.Regexp
	// anchored at the end of a match; a hit is discarded when it matches
	notFollowedBy *regexp.Regexp
}

func (p pattern) matches(text string) bool {
	if p.notFollowedBy == nil {
		return p.re.MatchString(text)
	}
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		if !p.notFollowedBy.MatchString(text[loc[1]:]) {
			return true
		}
	}
	return false
}

// Classifier holds compiled rules.
type Classifier struct {
	allow []pattern
	block []pattern
}

// Decision explains a Match result.
type Decision struct {
	Included  bool   `json:"included"`
	Allowed   string `json:"allowed,omitempty"`
	BlockedBy string `json:"blocked_by,omitempty"`
}

// Compile builds a Classifier. Patterns are matched case-insensitively.
func Compile(rules RuleSet) (*Classifier, error) {
	allow, err := compileAll(rules.Allow)
	if err != nil {
		return nil, fmt.Errorf("allow: %w", err)
	}
	block, err := compileAll(rules.Block)
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	return &Classifier{allow: allow, block: block}, nil
}

// MustCompile is Compile for rules known at build time.
func MustCompile(rules RuleSet) *Classifier {
	c, err := Compile(rules)
	if err != nil {
		panic(err)
	}
	return c
}

func compileAll(specs []PatternSpec) ([]pattern, error) {
	out := make([]pattern, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile("(?i)" + spec.Expr)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", spec.Expr, err)
		}
		p := pattern{source: spec.Expr, re: re}
		if spec.NotFollowedBy != "" {
			nf, err := regexp.Compile("(?i)^(?:" + spec.NotFollowedBy + ")")
			if err != nil {
				return nil, fmt.Errorf("pattern %q lookahead: %w", spec.Expr, err)
			}
			p.notFollowedBy = nf
		}
		out = append(out, p)
	}
	return out, nil
}

// Text joins a listing's title and summary the way Match expects.
func Text(title, summary string) string {
	return title + "\n" + summary
}

// Match evaluates text. Block rules win over allow rules; a classifier without
// allow rules includes everything that is not blocked.
func (c *Classifier) Match(text string) Decision {
	text = norm.NFC.String(text)

	for _, p := range c.block {
		if p.matches(text) {
			return Decision{BlockedBy: p.source}
		}
	}

	if len(c.allow) == 0 {
		return Decision{Included: true}
	}
	for _, p := range c.allow {
		if p.matches(text) {
			return Decision{Included: true, Allowed: p.source}
		}
	}
	return Decision{}
}

// Includes is Match(text).Included.
func (c *Classifier) Includes(text string) bool {
	return c.Match(text).Included
}

// DedupKey prefers the external URL and falls back to the internal id.
// An empty key means the item cannot be deduplicated and is always kept.
func DedupKey(url, id string) string {
	if u := strings.TrimSpace(url); u != "" {
		return "u:" + u
	}
	if i := strings.TrimSpace(id); i != "" {
		return "i:" + i
	}
	return ""
}

// Item is anything the classifier can filter.
type Item interface {
	ClassifierText() string
	ClassifierKey() string
}

// Filter keeps items that Match includes, then drops later duplicates by key.
// Input order is preserved and the first included occurrence of a key wins.
func Filter[T Item](c *Classifier, items []T) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if c.Includes(item.ClassifierText()) {
			kept = append(kept, item)
		}
	}
	return Dedup(kept)
}

// Dedup removes later duplicates without applying allow or block rules.
func Dedup[T Item](items []T) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := item.ClassifierKey()
		if key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, item)
	}
	return out
}
