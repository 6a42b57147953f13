package notification

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"exits_backend/internal/email"
	"exits_backend/internal/events"
	"exits_backend/platform/logger"

	"github.com/google/uuid"
)

const testLeadEmail = "buyer@example.com"

type testSender struct {
	leadCalls    []email.LeadListing
	confirmCalls []string
	welcomeCalls []string
	brands       []email.Brand
	err          error
}

func (s *testSender) SendLeadConfirmation(_ context.Context, brand email.Brand, _ string, listing email.LeadListing) error {
	s.brands = append(s.brands, brand)
	s.leadCalls = append(s.leadCalls, listing)
	return s.err
}

func (s *testSender) SendSubscriptionConfirm(_ context.Context, brand email.Brand, _ string, token string) error {
	s.brands = append(s.brands, brand)
	s.confirmCalls = append(s.confirmCalls, token)
	return s.err
}

func (s *testSender) SendWelcome(_ context.Context, brand email.Brand, _ string, token string) error {
	s.brands = append(s.brands, brand)
	s.welcomeCalls = append(s.welcomeCalls, token)
	return s.err
}

func (s *testSender) SendWeeklyDigest(context.Context, email.Brand, string, email.Digest, string) error {
	return nil
}

type testChat struct {
	enabled  bool
	messages []string
	err      error
}

func (c *testChat) Enabled() bool { return c.enabled }

func (c *testChat) SendMessage(_ context.Context, text string) error {
	c.messages = append(c.messages, text)
	return c.err
}

type testBrands struct{}

func (testBrands) ForSlug(slug string) email.Brand {
	return email.Brand{Slug: slug, FromEmail: "listings@" + slug + ".example"}
}

func newTestModule(sender email.Sender, chat ChatNotifier) *Module {
	return New(sender, chat, testBrands{}, logger.NewWithWriter("test", io.Discard))
}

func leadCapturedEvent() events.LeadCaptured {
	price := int64(350000)
	return events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		Vertical:  "cleaning",
		Email:     testLeadEmail,
		Listing: events.ListingSnapshot{
			ID:    "listing-1",
			Title: "Janitorial Route",
			Price: &price,
		},
	}
}

func TestLeadCapturedSendsEmailAndChat(t *testing.T) {
	sender := &testSender{}
	chat := &testChat{enabled: true}
	m := newTestModule(sender, chat)

	if err := m.Handle(context.Background(), leadCapturedEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.leadCalls) != 1 {
		t.Fatalf("expected 1 lead confirmation, got %d", len(sender.leadCalls))
	}
	if sender.leadCalls[0].Title != "Janitorial Route" {
		t.Fatalf("expected listing title forwarded, got %q", sender.leadCalls[0].Title)
	}
	if sender.brands[0].Slug != "cleaning" {
		t.Fatalf("expected cleaning brand, got %q", sender.brands[0].Slug)
	}
	if len(chat.messages) != 1 {
		t.Fatalf("expected 1 chat message, got %d", len(chat.messages))
	}
	if !strings.Contains(chat.messages[0], "New Lead: buyer@example.com - Janitorial Route ($350,000)") {
		t.Fatalf("unexpected chat text %q", chat.messages[0])
	}
}

func TestLeadCapturedSwallowsFailures(t *testing.T) {
	sender := &testSender{err: errors.New("resend down")}
	chat := &testChat{enabled: true, err: errors.New("webhook 500")}
	m := newTestModule(sender, chat)

	if err := m.Handle(context.Background(), leadCapturedEvent()); err != nil {
		t.Fatalf("expected failures to be swallowed, got %v", err)
	}
	if len(chat.messages) != 1 {
		t.Fatalf("expected chat to be attempted after email failure")
	}
}

func TestLeadCapturedSkipsDisabledChat(t *testing.T) {
	chat := &testChat{enabled: false}
	m := newTestModule(&testSender{}, chat)

	_ = m.Handle(context.Background(), leadCapturedEvent())
	if len(chat.messages) != 0 {
		t.Fatalf("expected no chat message when disabled, got %d", len(chat.messages))
	}
}

func TestLeadCapturedWithoutChat(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, nil)

	if err := m.Handle(context.Background(), leadCapturedEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.leadCalls) != 1 {
		t.Fatalf("expected email without chat, got %d", len(sender.leadCalls))
	}
}

func TestSubscriptionEvents(t *testing.T) {
	sender := &testSender{}
	m := newTestModule(sender, nil)
	subscriberID := uuid.New()

	_ = m.Handle(context.Background(), events.SubscriptionRequested{
		BaseEvent:    events.NewBaseEvent(),
		SubscriberID: subscriberID,
		Vertical:     "hvac",
		Email:        testLeadEmail,
		ConfirmToken: "confirm-1",
	})
	_ = m.Handle(context.Background(), events.SubscriptionConfirmed{
		BaseEvent:        events.NewBaseEvent(),
		SubscriberID:     subscriberID,
		Vertical:         "hvac",
		Email:            testLeadEmail,
		UnsubscribeToken: "unsub-1",
	})

	if len(sender.confirmCalls) != 1 || sender.confirmCalls[0] != "confirm-1" {
		t.Fatalf("expected confirm email with token, got %v", sender.confirmCalls)
	}
	if len(sender.welcomeCalls) != 1 || sender.welcomeCalls[0] != "unsub-1" {
		t.Fatalf("expected welcome email with unsubscribe token, got %v", sender.welcomeCalls)
	}
	if sender.brands[0].Slug != "hvac" {
		t.Fatalf("expected hvac brand, got %q", sender.brands[0].Slug)
	}
}

func TestRegisterHandlersWiresBus(t *testing.T) {
	sender := &testSender{}
	bus := events.NewInMemoryBus(logger.NewWithWriter("test", io.Discard))
	m := newTestModule(sender, nil)
	m.RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), leadCapturedEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sender.leadCalls) != 1 {
		t.Fatalf("expected handler to run through the bus, got %d calls", len(sender.leadCalls))
	}
}

func TestOperatorAlertsForPipelineEvents(t *testing.T) {
	chat := &testChat{enabled: true}
	bus := events.NewInMemoryBus(logger.NewWithWriter("test", io.Discard))
	newTestModule(&testSender{}, chat).RegisterHandlers(bus)
	leadID := uuid.New()

	published := []events.Event{
		events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    leadID,
			Vertical:  "cleaning",
			OldStatus: "new",
			NewStatus: "contacted",
		},
		events.Unsubscribed{
			BaseEvent:    events.NewBaseEvent(),
			SubscriberID: uuid.New(),
			Vertical:     "hvac",
			Email:        testLeadEmail,
		},
		events.WeeklyDigestSent{
			BaseEvent:  events.NewBaseEvent(),
			Vertical:   "landscaping",
			WeekOf:     "2025-03-31",
			Listings:   10,
			Recipients: 4,
			Sent:       3,
			Failed:     1,
		},
	}
	for _, e := range published {
		if err := bus.PublishSync(context.Background(), e); err != nil {
			t.Fatalf("%s: expected no error, got %v", e.EventName(), err)
		}
	}

	want := []string{
		"📌 Lead " + leadID.String() + " (cleaning): new → contacted",
		"👋 Unsubscribed: buyer@example.com (hvac)",
		"📬 Weekly digest landscaping (week of 2025-03-31): 3/4 sent, 10 listings, 1 failed",
	}
	if len(chat.messages) != len(want) {
		t.Fatalf("expected %d chat messages, got %v", len(want), chat.messages)
	}
	for i := range want {
		if chat.messages[i] != want[i] {
			t.Fatalf("message %d: expected %q, got %q", i, want[i], chat.messages[i])
		}
	}
}

func TestOperatorAlertFailureIsSwallowed(t *testing.T) {
	chat := &testChat{enabled: true, err: errors.New("webhook 500")}
	m := newTestModule(&testSender{}, chat)

	err := m.Handle(context.Background(), events.Unsubscribed{BaseEvent: events.NewBaseEvent(), Vertical: "hvac"})
	if err != nil {
		t.Fatalf("expected failure to be swallowed, got %v", err)
	}
}
