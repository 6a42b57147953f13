package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
)

type recordingTransport struct {
	messages []Message
	err      error
}

func (r *recordingTransport) Deliver(_ context.Context, msg Message) error {
	r.messages = append(r.messages, msg)
	return r.err
}

type fakeSES struct {
	input *ses.SendEmailInput
}

func (f *fakeSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	return &ses.SendEmailOutput{}, nil
}

func cleaningBrand() Brand {
	return Brand{
		Slug:           "cleaning",
		Name:           "Cleaning Services",
		FromName:       "VendingExits",
		FromEmail:      "listings@vendingexits.com",
		Color:          "#3B82F6",
		BaseURL:        "https://vendingexits.com",
		Business:       "Cleaning Business",
		BusinessPlural: "Cleaning Businesses",
		Profit:         "SDE",
		DigestHeader:   "This Week's Top Cleaning Business Opportunities",
		DigestIntro:    "Here are the most promising cleaning businesses listed this week.",
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestResendTransportPostsJSON(t *testing.T) {
	var got resendEmailRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewResendTransport(server.URL, "re_test")
	err := transport.Deliver(context.Background(), Message{
		FromName:  "VendingExits",
		FromEmail: "listings@vendingexits.com",
		To:        "buyer@example.com",
		Subject:   "Hello",
		HTML:      "<p>hi</p>",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if auth != "Bearer re_test" {
		t.Fatalf("expected bearer auth, got %q", auth)
	}
	if got.From != "VendingExits <listings@vendingexits.com>" {
		t.Fatalf("unexpected from %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "buyer@example.com" {
		t.Fatalf("unexpected to %v", got.To)
	}
	if got.Subject != "Hello" || got.HTML != "<p>hi</p>" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestResendTransportReportsFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	err := NewResendTransport(server.URL, "bad").Deliver(context.Background(), Message{FromEmail: "a@b.c", To: "d@e.f"})
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSESTransportBuildsInput(t *testing.T) {
	client := &fakeSES{}
	transport := NewSESTransportWithClient(client)

	err := transport.Deliver(context.Background(), Message{
		FromName:  "HVACExits",
		FromEmail: "listings@hvacexits.com",
		To:        "buyer@example.com",
		Subject:   "Top 10",
		HTML:      "<p>digest</p>",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if client.input == nil {
		t.Fatalf("expected SendEmail to be called")
	}
	if *client.input.Source != "HVACExits <listings@hvacexits.com>" {
		t.Fatalf("unexpected source %q", *client.input.Source)
	}
	if client.input.Destination.ToAddresses[0] != "buyer@example.com" {
		t.Fatalf("unexpected destination %v", client.input.Destination.ToAddresses)
	}
	if *client.input.Message.Body.Html.Data != "<p>digest</p>" {
		t.Fatalf("unexpected body %q", *client.input.Message.Body.Html.Data)
	}
}

func TestSendLeadConfirmationIncludesFinancing(t *testing.T) {
	transport := &recordingTransport{}
	sender := NewTemplateSender(transport, "Fallback", "fallback@example.com")

	listing := LeadListing{
		Title:         "Commercial Cleaning Company",
		Location:      "Austin, TX",
		URL:           "https://broker.example.com/listing/1",
		BrokerAccount: "Sunbelt Austin",
		Price:         int64Ptr(2_400_000),
		CashFlow:      int64Ptr(600_000),
		Revenue:       int64Ptr(1_800_000),
	}
	if err := sender.SendLeadConfirmation(context.Background(), cleaningBrand(), "buyer@example.com", listing); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(transport.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(transport.messages))
	}

	msg := transport.messages[0]
	if msg.Subject != "Your Details: Commercial Cleaning Company - Austin, TX" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if msg.FromEmail != "listings@vendingexits.com" {
		t.Fatalf("expected brand sender, got %q", msg.FromEmail)
	}
	for _, want := range []string{"$2,400,000", "$240,000", "$2,160,000", "$26,207", "4.00x (Market)", "Sunbelt Austin", "SBA Financing Scenario"} {
		if !strings.Contains(msg.HTML, want) {
			t.Fatalf("expected body to contain %q", want)
		}
	}
	if strings.Contains(msg.HTML, "ZgotmplZ") {
		t.Fatalf("expected brand color to survive escaping")
	}
}

func TestSendLeadConfirmationWithoutPrice(t *testing.T) {
	transport := &recordingTransport{}
	sender := NewTemplateSender(transport, "", "")

	if err := sender.SendLeadConfirmation(context.Background(), cleaningBrand(), "buyer@example.com", LeadListing{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	msg := transport.messages[0]
	if msg.Subject != "Your Details: Cleaning Business - " {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.HTML, "Contact Broker") {
		t.Fatalf("expected Contact Broker fallback")
	}
	if strings.Contains(msg.HTML, "SBA Financing Scenario") {
		t.Fatalf("expected no financing section without price")
	}
	if !strings.Contains(msg.HTML, "Cleaning Business Opportunity") {
		t.Fatalf("expected default title")
	}
}

func TestSendSubscriptionConfirmLinksToken(t *testing.T) {
	transport := &recordingTransport{}
	sender := NewTemplateSender(transport, "", "")

	if err := sender.SendSubscriptionConfirm(context.Background(), cleaningBrand(), "buyer@example.com", "confirm-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(transport.messages[0].HTML, "https://vendingexits.com/confirm?token=confirm-123") {
		t.Fatalf("expected confirm link in body")
	}
}

func TestSendUsesFallbackAddress(t *testing.T) {
	transport := &recordingTransport{}
	sender := NewTemplateSender(transport, "Exits", "hello@exits.example")

	brand := cleaningBrand()
	brand.FromName = ""
	brand.FromEmail = ""
	if err := sender.SendWelcome(context.Background(), brand, "buyer@example.com", "unsub"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if transport.messages[0].From() != "Exits <hello@exits.example>" {
		t.Fatalf("unexpected from %q", transport.messages[0].From())
	}
}

func TestSendWithoutAnyAddressFails(t *testing.T) {
	sender := NewTemplateSender(&recordingTransport{}, "", "")

	brand := cleaningBrand()
	brand.FromEmail = ""
	if err := sender.SendWelcome(context.Background(), brand, "buyer@example.com", "unsub"); err == nil {
		t.Fatalf("expected error without sender address")
	}
}

func TestSendPropagatesTransportError(t *testing.T) {
	transport := &recordingTransport{err: errors.New("smtp down")}
	sender := NewTemplateSender(transport, "", "")

	if err := sender.SendWelcome(context.Background(), cleaningBrand(), "buyer@example.com", "unsub"); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestRenderWeeklyDigest(t *testing.T) {
	digest := Digest{
		WeekOf: "January 5, 2026",
		Listings: []DigestListing{
			{Title: "Janitorial Route", Location: "Dallas, TX", URL: "https://broker.example.com/a", Price: int64Ptr(350_000), CashFlow: int64Ptr(120_000)},
			{Title: "", Location: "", Price: nil, Description: strings.Repeat("x", 300)},
		},
	}

	subject, html, err := RenderWeeklyDigest(cleaningBrand(), digest, "https://vendingexits.com/unsubscribe?token=tok-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if subject != "Top 10 Cleaning Businesses This Week - January 5, 2026" {
		t.Fatalf("unexpected subject %q", subject)
	}
	for _, want := range []string{"Janitorial Route", "$350,000", "$120,000", "Untitled", "unsubscribe?token=tok-1", "…"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected digest to contain %q", want)
		}
	}
	if strings.Contains(html, strings.Repeat("x", 241)) {
		t.Fatalf("expected long description to be truncated")
	}
}

func TestRenderWeeklyDigestArchiveCopyHasNoUnsubscribe(t *testing.T) {
	_, html, err := RenderWeeklyDigest(cleaningBrand(), Digest{WeekOf: "January 5, 2026"}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(html, "Unsubscribe") {
		t.Fatalf("expected archive copy without unsubscribe link")
	}
}
