// Package notification provides event handlers for sending notifications
// (emails and chat alerts) in response to domain events.
// Domain modules publish events and never talk to email providers or
// webhooks directly. Delivery failures are logged and counted, never returned.
package notification

import (
	"context"

	"exits_backend/internal/email"
	"exits_backend/internal/events"
	"exits_backend/internal/notify"
	"exits_backend/platform/logger"
	"exits_backend/platform/metrics"
)

const (
	channelEmail = "email"
	channelChat  = "chat"

	templateLeadConfirmation = "lead_confirmation"
	templateSubscribeConfirm = "subscribe_confirm"
	templateWelcome          = "welcome"
)

// ChatNotifier posts operator alerts. notify.Client satisfies it.
type ChatNotifier interface {
	Enabled() bool
	SendMessage(ctx context.Context, text string) error
}

// BrandResolver maps a vertical slug to its email branding.
type BrandResolver interface {
	ForSlug(slug string) email.Brand
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	chat   ChatNotifier
	brands BrandResolver
	log    *logger.Logger
}

// New creates the notification module. chat may be nil.
func New(sender email.Sender, chat ChatNotifier, brands BrandResolver, log *logger.Logger) *Module {
	return &Module{
		sender: sender,
		chat:   chat,
		brands: brands,
		log:    log,
	}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	// Lead events
	bus.Subscribe(events.LeadCaptured{}.EventName(), m)
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), m)

	// Subscriber events
	bus.Subscribe(events.SubscriptionRequested{}.EventName(), m)
	bus.Subscribe(events.SubscriptionConfirmed{}.EventName(), m)
	bus.Subscribe(events.Unsubscribed{}.EventName(), m)

	// Digest events
	bus.Subscribe(events.WeeklyDigestSent{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCaptured:
		m.handleLeadCaptured(ctx, e)
	case events.SubscriptionRequested:
		m.handleSubscriptionRequested(ctx, e)
	case events.SubscriptionConfirmed:
		m.handleSubscriptionConfirmed(ctx, e)
	case events.LeadStatusChanged:
		m.alert(ctx, e.Vertical, e.LeadID.String(),
			notify.LeadStatusText(e.LeadID.String(), e.Vertical, e.OldStatus, e.NewStatus))
	case events.Unsubscribed:
		m.alert(ctx, e.Vertical, e.Email, notify.UnsubscribedText(e.Email, e.Vertical))
	case events.WeeklyDigestSent:
		m.alert(ctx, e.Vertical, e.Vertical,
			notify.DigestSentText(e.Vertical, e.WeekOf, e.Listings, e.Recipients, e.Sent, e.Failed))
	default:
		m.log.Debug("notification module ignoring event", "event", event.EventName())
	}
	return nil
}

func (m *Module) handleLeadCaptured(ctx context.Context, e events.LeadCaptured) {
	log := m.log.WithContext(ctx).WithVertical(e.Vertical)
	brand := m.brands.ForSlug(e.Vertical)

	listing := email.LeadListing{
		Title:         e.Listing.Title,
		Location:      e.Listing.Location,
		URL:           e.Listing.URL,
		BrokerAccount: e.Listing.BrokerAccount,
		Price:         e.Listing.Price,
		Revenue:       e.Listing.Revenue,
		CashFlow:      e.Listing.CashFlow,
	}
	err := m.sender.SendLeadConfirmation(ctx, brand, e.Email, listing)
	m.recordEmail(log, templateLeadConfirmation, e.Email, err)
	if err == nil {
		log.Info("lead confirmation email sent", "leadId", e.LeadID, "email", e.Email)
	}

	m.alert(ctx, e.Vertical, e.Email, leadAlertText(e))
}

// alert posts text to the operator chat when one is configured.
func (m *Module) alert(ctx context.Context, vertical, subject, text string) {
	if m.chat == nil || !m.chat.Enabled() {
		return
	}
	err := m.chat.SendMessage(ctx, text)
	metrics.ChatNotifications.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		m.log.WithContext(ctx).WithVertical(vertical).NotificationFailed(channelChat, subject, err)
	}
}

func (m *Module) handleSubscriptionRequested(ctx context.Context, e events.SubscriptionRequested) {
	log := m.log.WithContext(ctx).WithVertical(e.Vertical)
	brand := m.brands.ForSlug(e.Vertical)

	err := m.sender.SendSubscriptionConfirm(ctx, brand, e.Email, e.ConfirmToken)
	m.recordEmail(log, templateSubscribeConfirm, e.Email, err)
	if err == nil {
		log.Info("subscription confirmation email sent", "subscriberId", e.SubscriberID, "email", e.Email)
	}
}

func (m *Module) handleSubscriptionConfirmed(ctx context.Context, e events.SubscriptionConfirmed) {
	log := m.log.WithContext(ctx).WithVertical(e.Vertical)
	brand := m.brands.ForSlug(e.Vertical)

	err := m.sender.SendWelcome(ctx, brand, e.Email, e.UnsubscribeToken)
	m.recordEmail(log, templateWelcome, e.Email, err)
	if err == nil {
		log.Info("welcome email sent", "subscriberId", e.SubscriberID, "email", e.Email)
	}
}

func (m *Module) recordEmail(log *logger.Logger, template, recipient string, err error) {
	metrics.EmailsSent.WithLabelValues(template, metrics.Status(err)).Inc()
	if err != nil {
		log.NotificationFailed(channelEmail, recipient, err)
	}
}

func leadAlertText(e events.LeadCaptured) string {
	title := e.Listing.Title
	if title == "" {
		title = e.Listing.ID
	}
	return notify.NewLeadText(e.Email, title, e.Listing.Price)
}
