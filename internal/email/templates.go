package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"exits_backend/internal/finance"
)

//go:embed templates/*.html
var templateFS embed.FS

const digestDescriptionLimit = 240

type baseEmailData struct {
	Title          string
	Heading        string
	Subheading     string
	CTALabel       string
	CTAURL         string
	BrandName      string
	Color          string
	FooterNote     string
	UnsubscribeURL string
}

func newBaseEmailData(b Brand, title string) baseEmailData {
	return baseEmailData{
		Title:     title,
		Heading:   title,
		BrandName: b.displayName(),
		Color:     b.color(),
	}
}

// LeadListing is the listing a lead asked about.
type LeadListing struct {
	Title         string
	Location      string
	URL           string
	BrokerAccount string
	Price         *int64
	Revenue       *int64
	CashFlow      *int64
}

type leadConfirmationEmailData struct {
	baseEmailData
	ListingTitle      string
	Location          string
	AskingPrice       string
	Revenue           string
	CashFlow          string
	ProfitLabel       string
	Multiple          string
	ShowFinancing     bool
	DownPayment       string
	LoanAmount        string
	MonthlyPayment    string
	CashFlowAfterDebt string
	BrokerAccount     string
	ListingURL        string
	BusinessPlural    string
}

type subscribeConfirmEmailData struct {
	baseEmailData
	BusinessPlural string
}

type welcomeEmailData struct {
	baseEmailData
	BusinessPlural string
}

// DigestListing is one ranked entry of a weekly digest.
type DigestListing struct {
	Title       string
	Location    string
	URL         string
	Description string
	Price       *int64
	CashFlow    *int64
	Revenue     *int64
}

// Digest is the content of one weekly send. WeekOf is the display date.
type Digest struct {
	WeekOf     string
	ArchiveURL string
	Listings   []DigestListing
}

type digestRow struct {
	Rank        int
	Title       string
	Location    string
	URL         string
	Description string
	Price       string
	CashFlow    string
	Revenue     string
}

type weeklyDigestEmailData struct {
	baseEmailData
	Intro      string
	WeekOf     string
	ArchiveURL string
	SiteURL    string
	Rows       []digestRow
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func leadConfirmationData(b Brand, l LeadListing) leadConfirmationEmailData {
	data := leadConfirmationEmailData{
		baseEmailData:  newBaseEmailData(b, "Your Listing Details"),
		ListingTitle:   orDefault(l.Title, b.Business+" Opportunity"),
		Location:       orDefault(l.Location, "See listing for details"),
		AskingPrice:    "Contact Broker",
		ProfitLabel:    "Cash Flow (" + orDefault(b.Profit, "SDE") + ")",
		BrokerAccount:  l.BrokerAccount,
		ListingURL:     l.URL,
		BusinessPlural: b.BusinessPlural,
	}
	data.Subheading = "Complete financial breakdown + direct broker contact"
	data.FooterNote = fmt.Sprintf("You'll also receive our weekly Top 10 %s every Monday.", strings.ToLower(b.BusinessPlural))

	price := positive(l.Price)
	cashFlow := positive(l.CashFlow)
	if price > 0 {
		data.AskingPrice = finance.Dollars(price)
	}
	if revenue := positive(l.Revenue); revenue > 0 {
		data.Revenue = finance.Dollars(revenue)
	}
	if cashFlow > 0 {
		data.CashFlow = finance.Dollars(cashFlow)
	}
	if price > 0 && cashFlow > 0 {
		s := finance.Estimate(price, cashFlow)
		data.Multiple = fmt.Sprintf("%.2fx (%s)", s.Multiple.Value, finance.MultipleLabel(s.Multiple))
		data.ShowFinancing = true
		data.DownPayment = finance.Dollars(s.DownPayment)
		data.LoanAmount = finance.Dollars(s.LoanAmount)
		data.MonthlyPayment = finance.Dollars(s.MonthlyPayment)
		data.CashFlowAfterDebt = finance.Dollars(s.AnnualCashFlowAfterDebt)
	}
	return data
}

func weeklyDigestData(b Brand, d Digest, unsubscribeURL string) weeklyDigestEmailData {
	data := weeklyDigestEmailData{
		baseEmailData: newBaseEmailData(b, orDefault(b.DigestHeader, "Weekly Top 10")),
		Intro:         b.DigestIntro,
		WeekOf:        d.WeekOf,
		ArchiveURL:    d.ArchiveURL,
		SiteURL:       b.BaseURL,
		Rows:          make([]digestRow, 0, len(d.Listings)),
	}
	data.Subheading = "Weekly Top 10 • " + d.WeekOf
	data.UnsubscribeURL = unsubscribeURL
	data.FooterNote = fmt.Sprintf("You're receiving this because you subscribed to %s.", b.displayName())

	for i, l := range d.Listings {
		data.Rows = append(data.Rows, digestRow{
			Rank:        i + 1,
			Title:       orDefault(l.Title, "Untitled"),
			Location:    l.Location,
			URL:         orDefault(l.URL, "#"),
			Description: truncate(l.Description, digestDescriptionLimit),
			Price:       finance.DollarsPtr(l.Price, "—"),
			CashFlow:    optionalDollars(l.CashFlow),
			Revenue:     optionalDollars(l.Revenue),
		})
	}
	return data
}

func optionalDollars(v *int64) string {
	if positive(v) <= 0 {
		return ""
	}
	return finance.Dollars(float64(*v))
}

func positive(v *int64) float64 {
	if v == nil || *v <= 0 {
		return 0
	}
	return float64(*v)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
