// Package email renders branded transactional emails and hands them to a
// delivery Transport.
package email

import (
	"context"
	"fmt"

	"exits_backend/platform/config"
)

// Sender is the outbound email API used by the notification and digest modules.
type Sender interface {
	SendLeadConfirmation(ctx context.Context, brand Brand, toEmail string, listing LeadListing) error
	SendSubscriptionConfirm(ctx context.Context, brand Brand, toEmail, confirmToken string) error
	SendWelcome(ctx context.Context, brand Brand, toEmail, unsubscribeToken string) error
	SendWeeklyDigest(ctx context.Context, brand Brand, toEmail string, digest Digest, unsubscribeToken string) error
}

// TemplateSender renders embedded templates and delivers them through a Transport.
type TemplateSender struct {
	transport Transport
	fromName  string
	fromEmail string
}

var _ Sender = (*TemplateSender)(nil)

// NewTemplateSender builds a sender. fromName and fromEmail are used when a
// Brand carries no address of its own.
func NewTemplateSender(transport Transport, fromName, fromEmail string) *TemplateSender {
	return &TemplateSender{transport: transport, fromName: fromName, fromEmail: fromEmail}
}

// NewSender picks the transport named by EMAIL_PROVIDER.
func NewSender(ctx context.Context, cfg config.EmailConfig) (*TemplateSender, error) {
	var transport Transport
	switch cfg.GetEmailProvider() {
	case config.EmailProviderNone, "":
		transport = NoopTransport{}
	case config.EmailProviderResend:
		transport = NewResendTransport(cfg.GetResendAPIURL(), cfg.GetResendAPIKey())
	case config.EmailProviderSMTP:
		transport = NewSMTPTransport(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword())
	case config.EmailProviderSES:
		ses, err := NewSESTransport(ctx, cfg.GetAWSRegion())
		if err != nil {
			return nil, err
		}
		transport = ses
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
	return NewTemplateSender(transport, cfg.GetEmailFromName(), cfg.GetEmailFromAddress()), nil
}

func (s *TemplateSender) SendLeadConfirmation(ctx context.Context, brand Brand, toEmail string, listing LeadListing) error {
	subject := LeadConfirmationSubject(brand, listing)
	content, err := renderEmailTemplate("lead_confirmation.html", leadConfirmationData(brand, listing))
	if err != nil {
		return err
	}
	return s.send(ctx, brand, toEmail, subject, content)
}

func (s *TemplateSender) SendSubscriptionConfirm(ctx context.Context, brand Brand, toEmail, confirmToken string) error {
	data := subscribeConfirmEmailData{
		baseEmailData:  newBaseEmailData(brand, "Confirm your subscription"),
		BusinessPlural: brand.BusinessPlural,
	}
	data.CTALabel = "Confirm subscription"
	data.CTAURL = brand.ConfirmURL(confirmToken)

	content, err := renderEmailTemplate("subscribe_confirm.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, brand, toEmail, fmt.Sprintf(subjectSubscriptionConfirm, brand.displayName()), content)
}

func (s *TemplateSender) SendWelcome(ctx context.Context, brand Brand, toEmail, unsubscribeToken string) error {
	data := welcomeEmailData{
		baseEmailData:  newBaseEmailData(brand, orDefault(brand.WelcomeHeader, "Welcome to "+brand.displayName())),
		BusinessPlural: brand.BusinessPlural,
	}
	data.CTALabel = orDefault(brand.WelcomeCTA, "Browse Current Listings")
	data.CTAURL = brand.BaseURL
	if unsubscribeToken != "" {
		data.UnsubscribeURL = brand.UnsubscribeURL(unsubscribeToken)
	}

	content, err := renderEmailTemplate("welcome.html", data)
	if err != nil {
		return err
	}
	subject := orDefault(brand.WelcomeSubject, fmt.Sprintf(subjectWelcomeFallbackFmt, brand.displayName()))
	return s.send(ctx, brand, toEmail, subject, content)
}

func (s *TemplateSender) SendWeeklyDigest(ctx context.Context, brand Brand, toEmail string, digest Digest, unsubscribeToken string) error {
	subject, content, err := RenderWeeklyDigest(brand, digest, brand.UnsubscribeURL(unsubscribeToken))
	if err != nil {
		return err
	}
	return s.send(ctx, brand, toEmail, subject, content)
}

func (s *TemplateSender) send(ctx context.Context, brand Brand, toEmail, subject, htmlContent string) error {
	msg := Message{
		FromName:  orDefault(brand.FromName, s.fromName),
		FromEmail: orDefault(brand.FromEmail, s.fromEmail),
		To:        toEmail,
		Subject:   subject,
		HTML:      htmlContent,
	}
	if msg.FromEmail == "" {
		return fmt.Errorf("no sender address for %s", brand.Slug)
	}
	return s.transport.Deliver(ctx, msg)
}

// LeadConfirmationSubject is "Your Details: {title} - {location}".
func LeadConfirmationSubject(brand Brand, listing LeadListing) string {
	return fmt.Sprintf(subjectLeadConfirmationFmt, orDefault(listing.Title, brand.Business), listing.Location)
}

// WeeklyDigestSubject is "Top 10 {business plural} This Week - {week of}".
func WeeklyDigestSubject(brand Brand, weekOf string) string {
	return fmt.Sprintf(subjectWeeklyDigestFmt, brand.BusinessPlural, weekOf)
}

// RenderWeeklyDigest renders the digest subject and body. An empty
// unsubscribeURL renders the archive copy without a personal opt-out link.
func RenderWeeklyDigest(brand Brand, digest Digest, unsubscribeURL string) (string, string, error) {
	content, err := renderEmailTemplate("weekly_digest.html", weeklyDigestData(brand, digest, unsubscribeURL))
	if err != nil {
		return "", "", err
	}
	return WeeklyDigestSubject(brand, digest.WeekOf), content, nil
}
