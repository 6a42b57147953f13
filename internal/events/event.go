// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"exits_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// ListingSnapshot is the listing data a lead notification needs. It is copied
// into the event so handlers never reload the listing.
type ListingSnapshot struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	Price         *int64 `json:"price,omitempty"`
	CashFlow      *int64 `json:"cashFlow,omitempty"`
	Revenue       *int64 `json:"revenue,omitempty"`
	URL           string `json:"url"`
	BrokerAccount string `json:"brokerAccount,omitempty"`
}

// LeadCaptured is published after a buyer lead has been stored.
type LeadCaptured struct {
	BaseEvent
	LeadID    uuid.UUID       `json:"leadId"`
	Vertical  string          `json:"vertical"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone,omitempty"`
	Source    string          `json:"source"`
	LeadScore int             `json:"leadScore"`
	Listing   ListingSnapshot `json:"listing"`
}

func (e LeadCaptured) EventName() string { return "leads.lead.captured" }

// LeadStatusChanged is published when an operator moves a lead through the pipeline.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	Vertical  string    `json:"vertical"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// =============================================================================
// Subscriber Domain Events
// =============================================================================

// SubscriptionRequested is published when an address asks to join the digest.
type SubscriptionRequested struct {
	BaseEvent
	SubscriberID uuid.UUID `json:"subscriberId"`
	Vertical     string    `json:"vertical"`
	Email        string    `json:"email"`
	ConfirmToken string    `json:"confirmToken"`
}

func (e SubscriptionRequested) EventName() string { return "subscribers.subscription.requested" }

// SubscriptionConfirmed is published once the confirmation token is redeemed.
type SubscriptionConfirmed struct {
	BaseEvent
	SubscriberID     uuid.UUID `json:"subscriberId"`
	Vertical         string    `json:"vertical"`
	Email            string    `json:"email"`
	UnsubscribeToken string    `json:"unsubscribeToken"`
}

func (e SubscriptionConfirmed) EventName() string { return "subscribers.subscription.confirmed" }

// Unsubscribed is published when an address opts out.
type Unsubscribed struct {
	BaseEvent
	SubscriberID uuid.UUID `json:"subscriberId"`
	Vertical     string    `json:"vertical"`
	Email        string    `json:"email"`
}

func (e Unsubscribed) EventName() string { return "subscribers.subscription.unsubscribed" }

// =============================================================================
// Digest Domain Events
// =============================================================================

// WeeklyDigestSent is published after a digest run completes.
type WeeklyDigestSent struct {
	BaseEvent
	Vertical   string `json:"vertical"`
	WeekOf     string `json:"weekOf"`
	Listings   int    `json:"listings"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	ArchiveKey string `json:"archiveKey,omitempty"`
}

func (e WeeklyDigestSent) EventName() string { return "digest.weekly.sent" }
