package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"exits_backend/internal/events"
	"exits_backend/internal/leads/repository"
	"exits_backend/internal/leads/transport"
	listingsrepo "exits_backend/internal/listings/repository"
	subscribersrepo "exits_backend/internal/subscribers/repository"
	"exits_backend/platform/apperr"
	"exits_backend/platform/logger"
	"exits_backend/platform/metrics"
	"exits_backend/platform/phone"
	"exits_backend/platform/sanitize"
)

const (
	msgRequiredFields = "Email and listing_id required"
	msgInvalidEmail   = "Valid email is required"
	msgCaptureFailed  = "Failed to capture lead"
	msgCaptured       = "Lead captured successfully"

	defaultSource        = "listing_detail"
	confirmationSequence = "simple-confirmation"
	scoreWithPhone       = 25
	scoreEmailOnly       = 10
	followUpDelay        = 48 * time.Hour

	maxTitleLen     = 300
	maxLocationLen  = 200
	maxUserAgentLen = 512
	maxReferrerLen  = 2048
)

// ListingLookup loads the listing a lead refers to.
type ListingLookup interface {
	Get(ctx context.Context, id string) (listingsrepo.Listing, error)
}

// SubscriberUpserter adds the buyer to the digest audience.
type SubscriberUpserter interface {
	UpsertConfirmed(ctx context.Context, email, vertical string) (subscribersrepo.Subscriber, error)
}

// CaptureInput is a capture request plus its HTTP metadata.
type CaptureInput struct {
	Request   transport.CaptureRequest
	Vertical  string
	UserAgent string
	Referrer  string
	IPAddress string
}

// Service provides lead capture and the operator pipeline.
type Service struct {
	repo        repository.Repository
	listings    ListingLookup
	subscribers SubscriberUpserter
	eventBus    events.Bus
	log         *logger.Logger
	now         func() time.Time
}

// New creates a new leads service.
func New(repo repository.Repository, listings ListingLookup, subscribers SubscriberUpserter, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		listings:    listings,
		subscribers: subscribers,
		eventBus:    eventBus,
		log:         log,
		now:         time.Now,
	}
}

// Capture stores a buyer lead and announces it. Only the lead insert can fail
// the request; subscriber and listing lookups degrade to logging.
func (s *Service) Capture(ctx context.Context, in CaptureInput) (transport.CaptureResponse, error) {
	req := in.Request
	email := strings.ToLower(strings.TrimSpace(req.Email))
	listingID := strings.TrimSpace(req.ListingID)
	if email == "" || listingID == "" {
		return transport.CaptureResponse{}, apperr.Validation(msgRequiredFields)
	}
	if !strings.Contains(email, "@") {
		return transport.CaptureResponse{}, apperr.Validation(msgInvalidEmail)
	}

	log := s.log.WithContext(ctx)

	if _, err := s.subscribers.UpsertConfirmed(ctx, email, in.Vertical); err != nil {
		log.Warn("subscriber upsert failed", "email", email, "error", err)
	}

	listing, found := s.loadListing(ctx, log, listingID)
	snapshot := buildSnapshot(listingID, req, listing, found)

	now := s.now()
	params := repository.CreateParams{
		ID:                uuid.New(),
		Email:             email,
		ListingID:         listingID,
		ListingTitle:      optional(snapshot.Title),
		ListingURL:        optional(snapshot.URL),
		ListingPrice:      snapshot.Price,
		ListingLocation:   optional(snapshot.Location),
		Vertical:          in.Vertical,
		Source:            defaultString(strings.TrimSpace(req.Source), defaultSource),
		LeadScore:         scoreEmailOnly,
		Status:            repository.StatusNew,
		NextFollowUpDate:  FollowUpDate(now),
		EmailSequenceName: confirmationSequence,
		EmailsSent:        1,
		LastEmailSentAt:   &now,
		UserAgent:         optional(sanitize.Line(in.UserAgent, maxUserAgentLen)),
		Referrer:          optional(sanitize.Line(in.Referrer, maxReferrerLen)),
		IPAddress:         defaultString(in.IPAddress, "unknown"),
	}
	if p := phone.NormalizeE164(req.Phone); p != "" {
		params.Phone = &p
		params.LeadScore = scoreWithPhone
	}
	if found && listing.BrokerAccount != "" {
		params.BrokerAccount = &listing.BrokerAccount
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		log.DatabaseError("create lead", err)
		return transport.CaptureResponse{}, apperr.Wrap(apperr.KindInternal, msgCaptureFailed, err).WithDetails(err.Error())
	}

	metrics.LeadsCaptured.WithLabelValues(in.Vertical).Inc()
	s.eventBus.Publish(ctx, events.LeadCaptured{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Vertical:  in.Vertical,
		Email:     email,
		Phone:     derefString(params.Phone),
		Source:    params.Source,
		LeadScore: params.LeadScore,
		Listing:   snapshot,
	})

	return transport.CaptureResponse{Success: true, LeadID: lead.ID, Message: msgCaptured}, nil
}

// List returns a page of leads for operators.
func (s *Service) List(ctx context.Context, req transport.ListRequest) (transport.LeadListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		Status:   req.Status,
		Vertical: strings.TrimSpace(req.Vertical),
		Offset:   (page - 1) * pageSize,
		Limit:    pageSize,
	})
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	resp := transport.LeadListResponse{
		Items:      make([]transport.LeadResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, l := range items {
		resp.Items = append(resp.Items, ToLeadResponse(l))
	}
	return resp, nil
}

// UpdateStatus moves a lead to status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (transport.LeadResponse, error) {
	previous, lead, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if previous != status {
		s.eventBus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Vertical:  lead.Vertical,
			OldStatus: previous,
			NewStatus: status,
		})
	}
	return ToLeadResponse(lead), nil
}

// FollowUpDate is the UTC calendar date two days after now.
func FollowUpDate(now time.Time) time.Time {
	d := now.UTC().Add(followUpDelay)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) loadListing(ctx context.Context, log *logger.Logger, id string) (listingsrepo.Listing, bool) {
	listing, err := s.listings.Get(ctx, id)
	if err == nil {
		return listing, true
	}
	if apperr.Is(err, apperr.KindNotFound) {
		log.Warn("lead references unknown listing", "listing_id", id)
	} else if !errors.Is(err, context.Canceled) {
		log.Error("listing fetch failed", "listing_id", id, "error", err)
	}
	return listingsrepo.Listing{}, false
}

// buildSnapshot merges what the page posted with the stored listing. Posted
// title, URL and location win when present; the stored price always wins.
func buildSnapshot(id string, req transport.CaptureRequest, l listingsrepo.Listing, found bool) events.ListingSnapshot {
	snap := events.ListingSnapshot{
		ID:       id,
		Title:    sanitize.Line(req.ListingTitle, maxTitleLen),
		Location: sanitize.Line(req.ListingLocation, maxLocationLen),
		URL:      strings.TrimSpace(req.ListingURL),
	}
	if req.ListingPrice != nil {
		p := int64(math.Round(*req.ListingPrice))
		snap.Price = &p
	}
	if !found {
		return snap
	}

	if snap.Title == "" {
		snap.Title = l.Title
	}
	if snap.URL == "" {
		snap.URL = l.URL
	}
	if snap.Location == "" {
		snap.Location = listingLocation(l)
	}
	if l.Price != nil {
		snap.Price = l.Price
	}
	snap.CashFlow = l.CashFlow
	snap.Revenue = l.Revenue
	snap.Description = l.Description
	snap.BrokerAccount = l.BrokerAccount
	return snap
}

func listingLocation(l listingsrepo.Listing) string {
	if l.City != "" && l.State != "" {
		return l.City + ", " + l.State
	}
	return l.Location
}

// ToLeadResponse maps a stored lead to its operator view.
func ToLeadResponse(l repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:              l.ID,
		Email:           l.Email,
		Phone:           l.Phone,
		ListingID:       l.ListingID,
		ListingTitle:    l.ListingTitle,
		ListingURL:      l.ListingURL,
		ListingPrice:    l.ListingPrice,
		ListingLocation: l.ListingLocation,
		Vertical:        l.Vertical,
		Source:          l.Source,
		LeadScore:       l.LeadScore,
		Status:          l.Status,
		EmailsSent:      l.EmailsSent,
		LastEmailSentAt: l.LastEmailSentAt,
		IPAddress:       l.IPAddress,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
	if l.NextFollowUpDate != nil {
		resp.NextFollowUpDate = l.NextFollowUpDate.Format(time.DateOnly)
	}
	return resp
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
