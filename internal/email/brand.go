package email

import (
	"strings"

	"exits_backend/internal/vertical"
)

// Brand carries the per-vertical identity an email is rendered with.
type Brand struct {
	Slug           string
	Name           string
	FromName       string
	FromEmail      string
	Color          string
	BaseURL        string
	Business       string
	BusinessPlural string
	Profit         string
	WelcomeSubject string
	WelcomeHeader  string
	WelcomeCTA     string
	DigestHeader   string
	DigestIntro    string
}

// BrandFor derives a Brand from v. Links are built against baseURL.
func BrandFor(v *vertical.Vertical, baseURL string) Brand {
	return Brand{
		Slug:           v.Slug,
		Name:           v.Name,
		FromName:       v.Email.FromName,
		FromEmail:      v.Email.FromEmail,
		Color:          v.BrandColor,
		BaseURL:        strings.TrimRight(baseURL, "/"),
		Business:       v.Terminology.Business,
		BusinessPlural: v.Terminology.BusinessPlural,
		Profit:         v.Terminology.Profit,
		WelcomeSubject: v.Email.WelcomeSubject,
		WelcomeHeader:  v.Email.WelcomeHeader,
		WelcomeCTA:     v.Email.WelcomeCTA,
		DigestHeader:   v.Email.DigestHeader,
		DigestIntro:    v.Email.DigestIntro,
	}
}

// displayName is the name shown in headers and footers.
func (b Brand) displayName() string {
	if b.FromName != "" {
		return b.FromName
	}
	return b.Name
}

func (b Brand) color() string {
	if b.Color != "" {
		return b.Color
	}
	return "#059669"
}

// ConfirmURL is the double opt-in link for token.
func (b Brand) ConfirmURL(token string) string {
	return b.BaseURL + "/confirm?token=" + token
}

// UnsubscribeURL is the opt-out link for token.
func (b Brand) UnsubscribeURL(token string) string {
	return b.BaseURL + "/unsubscribe?token=" + token
}

// ArchiveURL links to the archived browser copy of a digest.
func (b Brand) ArchiveURL(weekOf string) string {
	return b.BaseURL + "/api/v1/digests/" + b.Slug + "/" + weekOf
}

// BrandResolver maps vertical slugs to Brands.
type BrandResolver struct {
	verticals *vertical.Registry
	baseURL   string
}

// NewBrandResolver uses baseURL for every vertical when set, otherwise
// https:// plus the vertical's primary hostname.
func NewBrandResolver(verticals *vertical.Registry, baseURL string) *BrandResolver {
	return &BrandResolver{verticals: verticals, baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// ForSlug resolves slug, falling back to the default vertical for unknown slugs.
func (r *BrandResolver) ForSlug(slug string) Brand {
	v, ok := r.verticals.BySlug(slug)
	if !ok {
		v = r.verticals.Default()
	}
	return r.For(v)
}

func (r *BrandResolver) For(v *vertical.Vertical) Brand {
	base := r.baseURL
	if base == "" {
		base = "https://" + r.verticals.PrimaryHostname(v.Slug)
	}
	return BrandFor(v, base)
}
