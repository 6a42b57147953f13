// Package vertical holds the static registry of branded marketplace verticals
// and resolves an inbound hostname to one of them.
package vertical

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"

	"exits_backend/internal/classifier"
	"exits_backend/internal/finance"

	"gopkg.in/yaml.v3"
)

//go:embed verticals.yaml
var defaultRegistryYAML []byte

// Range is a min/median/max multiple.
type Range struct {
	Min    float64 `yaml:"min" json:"min"`
	Median float64 `yaml:"median" json:"median"`
	Max    float64 `yaml:"max" json:"max"`
}

// Multiples returns r as finance multiples.
func (r Range) Multiples() finance.Multiples {
	return finance.Multiples{Min: r.Min, Median: r.Median, Max: r.Max}
}

// ValuationMultiples are the typical trading multiples for a vertical.
type ValuationMultiples struct {
	Revenue Range  `yaml:"revenue" json:"revenue"`
	SDE     Range  `yaml:"sde" json:"sde"`
	EBITDA  *Range `yaml:"ebitda,omitempty" json:"ebitda,omitempty"`
}

// BrokerSource is a listing source the external scraper reads.
type BrokerSource struct {
	Name      string `yaml:"name" json:"name"`
	URL       string `yaml:"url" json:"url"`
	Active    bool   `yaml:"active" json:"active"`
	RateLimit int    `yaml:"rate_limit,omitempty" json:"rate_limit,omitempty"`
}

// Terminology is the industry wording used in pages and emails.
type Terminology struct {
	Business       string `yaml:"business" json:"business"`
	BusinessPlural string `yaml:"business_plural" json:"business_plural"`
	Revenue        string `yaml:"revenue" json:"revenue"`
	Profit         string `yaml:"profit" json:"profit"`
}

// EmailSettings brand outbound email.
type EmailSettings struct {
	FromEmail      string `yaml:"from_email" json:"from_email"`
	FromName       string `yaml:"from_name" json:"from_name"`
	WelcomeSubject string `yaml:"welcome_subject" json:"welcome_subject"`
	WelcomeHeader  string `yaml:"welcome_header" json:"welcome_header"`
	WelcomeCTA     string `yaml:"welcome_cta" json:"welcome_cta"`
	DigestHeader   string `yaml:"digest_header" json:"digest_header"`
	DigestIntro    string `yaml:"digest_intro" json:"digest_intro"`
}

// SEO is page metadata.
type SEO struct {
	MetaTitle       string   `yaml:"meta_title" json:"meta_title"`
	MetaDescription string   `yaml:"meta_description" json:"meta_description"`
	Keywords        []string `yaml:"keywords" json:"keywords"`
}

// Category is a browseable sub-segment of a vertical.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Vertical is one branded instance of the marketplace.
type Vertical struct {
	Slug          string             `yaml:"slug" json:"slug"`
	Name          string             `yaml:"name" json:"name"`
	Domain        string             `yaml:"domain" json:"domain"`
	BrandColor    string             `yaml:"brand_color" json:"brand_color"`
	Industry      string             `yaml:"industry" json:"industry"`
	SEO           SEO                `yaml:"seo" json:"seo"`
	Categories    []Category         `yaml:"categories" json:"categories"`
	Valuation     ValuationMultiples `yaml:"valuation" json:"valuation"`
	BrokerSources []BrokerSource     `yaml:"broker_sources" json:"broker_sources"`
	Terminology   Terminology        `yaml:"terminology" json:"terminology"`
	Email         EmailSettings      `yaml:"email" json:"email"`
	Rules         classifier.RuleSet `yaml:"rules" json:"-"`

	classifier *classifier.Classifier
}

// Classifier returns the compiled listing rules for the vertical.
func (v *Vertical) Classifier() *classifier.Classifier {
	return v.classifier
}

// MetaTitle expands the {{name}} placeholder.
func (v *Vertical) MetaTitle() string {
	return strings.ReplaceAll(v.SEO.MetaTitle, "{{name}}", v.Email.FromName)
}

// HostnameMapping binds a hostname to a vertical slug.
type HostnameMapping struct {
	Hostname string `yaml:"hostname"`
	Vertical string `yaml:"vertical"`
	Primary  bool   `yaml:"primary"`
}

type registryFile struct {
	DefaultVertical string            `yaml:"default_vertical"`
	Hostnames       []HostnameMapping `yaml:"hostnames"`
	Verticals       []*Vertical       `yaml:"verticals"`
}

// Registry is immutable after construction and safe for concurrent reads.
type Registry struct {
	bySlug    map[string]*Vertical
	byHost    map[string]*Vertical
	primary   map[string]string
	hostnames map[string][]string
	order     []string
	def       *Vertical
}

// LoadDefault parses the embedded registry.
func LoadDefault() (*Registry, error) {
	return Parse(defaultRegistryYAML)
}

// Load parses path when set, otherwise the embedded registry.
func Load(path string) (*Registry, error) {
	if strings.TrimSpace(path) == "" {
		return LoadDefault()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read verticals file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from YAML, compiling every vertical's rules.
func Parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse verticals: %w", err)
	}

	r := &Registry{
		bySlug:    make(map[string]*Vertical, len(file.Verticals)),
		byHost:    make(map[string]*Vertical, len(file.Hostnames)),
		primary:   make(map[string]string),
		hostnames: make(map[string][]string),
	}

	for _, v := range file.Verticals {
		slug := strings.ToLower(strings.TrimSpace(v.Slug))
		if slug == "" {
			return nil, fmt.Errorf("vertical without slug")
		}
		if _, dup := r.bySlug[slug]; dup {
			return nil, fmt.Errorf("duplicate vertical %q", slug)
		}
		c, err := classifier.Compile(v.Rules)
		if err != nil {
			return nil, fmt.Errorf("vertical %q rules: %w", slug, err)
		}
		v.Slug = slug
		v.classifier = c
		r.bySlug[slug] = v
		r.order = append(r.order, slug)
	}

	for _, m := range file.Hostnames {
		v, ok := r.bySlug[strings.ToLower(m.Vertical)]
		if !ok {
			return nil, fmt.Errorf("hostname %q references unknown vertical %q", m.Hostname, m.Vertical)
		}
		host := normalizeHost(m.Hostname)
		r.byHost[host] = v
		r.hostnames[v.Slug] = append(r.hostnames[v.Slug], m.Hostname)
		if m.Primary {
			r.primary[v.Slug] = m.Hostname
		}
	}

	def, ok := r.bySlug[strings.ToLower(file.DefaultVertical)]
	if !ok {
		return nil, fmt.Errorf("default vertical %q is not defined", file.DefaultVertical)
	}
	r.def = def

	return r, nil
}

// Resolve maps a request host to a vertical, falling back to the default.
func (r *Registry) Resolve(host string) *Vertical {
	if v, ok := r.byHost[normalizeHost(host)]; ok {
		return v
	}
	return r.def
}

// BySlug looks up a vertical by slug.
func (r *Registry) BySlug(slug string) (*Vertical, bool) {
	v, ok := r.bySlug[strings.ToLower(strings.TrimSpace(slug))]
	return v, ok
}

// IsValid reports whether slug names a vertical.
func (r *Registry) IsValid(slug string) bool {
	_, ok := r.BySlug(slug)
	return ok
}

// Default returns the fallback vertical.
func (r *Registry) Default() *Vertical {
	return r.def
}

// All returns verticals in file order.
func (r *Registry) All() []*Vertical {
	out := make([]*Vertical, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.bySlug[slug])
	}
	return out
}

// Slugs returns all slugs sorted.
func (r *Registry) Slugs() []string {
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// PrimaryHostname returns the primary hostname for slug, or the vertical's domain.
func (r *Registry) PrimaryHostname(slug string) string {
	if h, ok := r.primary[strings.ToLower(slug)]; ok {
		return h
	}
	if v, ok := r.BySlug(slug); ok {
		return v.Domain
	}
	return ""
}

// Hostnames returns every hostname mapped to slug.
func (r *Registry) Hostnames(slug string) []string {
	return append([]string(nil), r.hostnames[strings.ToLower(slug)]...)
}

// normalizeHost strips any port, lowercases and drops a trailing dot.
func normalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(strings.TrimSuffix(host, "]"), "[")
	return strings.TrimSuffix(strings.ToLower(host), ".")
}
