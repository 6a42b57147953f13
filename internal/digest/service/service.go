// Package service builds and sends the weekly top listings digest.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"exits_backend/internal/adapters/storage"
	"exits_backend/internal/digest/repository"
	"exits_backend/internal/digest/transport"
	"exits_backend/internal/email"
	"exits_backend/internal/events"
	listingsrepo "exits_backend/internal/listings/repository"
	subscribersrepo "exits_backend/internal/subscribers/repository"
	"exits_backend/internal/vertical"
	"exits_backend/platform/apperr"
	"exits_backend/platform/logger"
	"exits_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// Zone fixes week boundaries and the display date.
	Zone = "America/New_York"

	weekKeyLayout     = "2006-01-02"
	weekDisplayLayout = "January 2, 2006"
	archiveContent    = "text/html; charset=utf-8"
	recentRunsLimit   = 12

	msgNoSubscribers = "No subscribers to send to"
	msgNoListings    = "No listings to send"
)

// ListingSource returns the ranked, classifier-filtered digest candidates.
type ListingSource interface {
	TopForDigest(ctx context.Context, v *vertical.Vertical, n int, lookback time.Duration) ([]listingsrepo.Listing, error)
}

// SubscriberSource lists confirmed, not unsubscribed recipients.
type SubscriberSource interface {
	ListActive(ctx context.Context, vertical string) ([]subscribersrepo.Subscriber, error)
}

// BrandResolver builds email branding for a vertical.
type BrandResolver interface {
	For(v *vertical.Vertical) email.Brand
}

// Settings are the digest knobs from configuration.
type Settings struct {
	BatchSize    int
	LookbackDays int
	Size         int
	Bucket       string
}

// Deps groups the collaborators of Service.
type Deps struct {
	Listings    ListingSource
	Subscribers SubscriberSource
	Runs        repository.Repository
	Sender      email.Sender
	Brands      BrandResolver
	Archive     storage.ObjectStore
	Bus         events.Bus
	Log         *logger.Logger
}

// SendOptions alter a send. DryRun renders and counts without delivering;
// Force resends a week that already has a run.
type SendOptions struct {
	DryRun bool
	Force  bool
}

// Preview is a rendered digest that has not been sent.
type Preview struct {
	Vertical string `json:"vertical"`
	WeekKey  string `json:"weekKey"`
	WeekOf   string `json:"weekOf"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Listings int    `json:"listingsCount"`
}

// Service provides digest business logic.
type Service struct {
	deps     Deps
	settings Settings
	now      func() time.Time
	zone     *time.Location
}

// New creates a new digest service. A nil Archive disables archiving.
func New(deps Deps, settings Settings) *Service {
	zone, err := time.LoadLocation(Zone)
	if err != nil {
		zone = time.UTC
	}
	if settings.BatchSize < 1 {
		settings.BatchSize = 100
	}
	if settings.Size < 1 {
		settings.Size = 10
	}
	if settings.LookbackDays < 1 {
		settings.LookbackDays = 90
	}
	return &Service{deps: deps, settings: settings, now: time.Now, zone: zone}
}

// Location is the zone week boundaries are computed in.
func (s *Service) Location() *time.Location {
	return s.zone
}

// WeekStart returns the Monday that starts the week containing t, as a UTC date.
func WeekStart(t time.Time, zone *time.Location) time.Time {
	local := t.In(zone)
	offset := (int(local.Weekday()) + 6) % 7
	monday := local.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}

// Build renders the digest for v without a personal unsubscribe link.
func (s *Service) Build(ctx context.Context, v *vertical.Vertical) (Preview, error) {
	now := s.now()
	listings, err := s.topListings(ctx, v)
	if err != nil {
		return Preview{}, err
	}
	if len(listings) == 0 {
		return Preview{}, apperr.NotFound(msgNoListings)
	}

	digest := s.digestFor(v, now, listings)
	subject, html, err := email.RenderWeeklyDigest(s.deps.Brands.For(v), digest, "")
	if err != nil {
		return Preview{}, fmt.Errorf("render digest: %w", err)
	}
	return Preview{
		Vertical: v.Slug,
		WeekKey:  WeekStart(now, s.zone).Format(weekKeyLayout),
		WeekOf:   digest.WeekOf,
		Subject:  subject,
		HTML:     html,
		Listings: len(listings),
	}, nil
}

// Send delivers the digest for v to every active subscriber. Batches run
// sequentially; recipients within a batch are sent concurrently and a failed
// recipient is counted, never fatal.
func (s *Service) Send(ctx context.Context, v *vertical.Vertical, opts SendOptions) (transport.SendResponse, error) {
	log := s.deps.Log.WithContext(ctx).WithVertical(v.Slug)
	now := s.now()
	weekStart := WeekStart(now, s.zone)
	weekKey := weekStart.Format(weekKeyLayout)
	resp := transport.SendResponse{Vertical: v.Slug, WeekOf: weekKey, DryRun: opts.DryRun}

	subscribers, err := s.deps.Subscribers.ListActive(ctx, v.Slug)
	if err != nil {
		return resp, fmt.Errorf("list subscribers: %w", err)
	}
	if len(subscribers) == 0 {
		resp.Message = msgNoSubscribers
		return resp, nil
	}

	listings, err := s.topListings(ctx, v)
	if err != nil {
		return resp, err
	}
	if len(listings) == 0 {
		resp.Message = msgNoListings
		return resp, nil
	}
	resp.Listings = len(listings)
	resp.Recipients = len(subscribers)

	if opts.DryRun {
		resp.Message = fmt.Sprintf("Dry run: would send to %d subscribers", len(subscribers))
		return resp, nil
	}

	claim, err := s.deps.Runs.Claim(ctx, repository.ClaimParams{
		ID:       uuid.New(),
		Vertical: v.Slug,
		WeekOf:   weekStart,
		Force:    opts.Force,
	})
	if err != nil {
		return resp, err
	}
	if !claim.Claimed {
		return resp, apperr.Conflict(fmt.Sprintf("Weekly digest already sent for week of %s", weekKey)).
			WithDetails(map[string]string{"vertical": v.Slug, "week_of": weekKey})
	}

	brand := s.deps.Brands.For(v)
	digest := s.digestFor(v, now, listings)
	if key, ok := s.archive(ctx, log, brand, digest, weekKey); ok {
		resp.ArchiveKey = key
		digest.ArchiveURL = brand.ArchiveURL(weekKey)
	}

	sent, failed := s.deliver(ctx, log, brand, digest, subscribers)
	resp.Sent = sent
	resp.Failed = failed
	resp.Message = fmt.Sprintf("Successfully sent to %d subscribers", sent)

	if sent == 0 {
		// Nobody received it, so a retry must not need Force. A forced rerun
		// keeps the existing row and its earlier outcome.
		if claim.Inserted {
			if err := s.deps.Runs.Release(ctx, claim.ID); err != nil {
				log.DatabaseError("digest.release", err)
			}
		}
		return resp, apperr.Internal("Failed to send weekly email").
			WithDetails(fmt.Sprintf("all %d deliveries failed", failed))
	}

	outcome := repository.Outcome{Recipients: len(subscribers), Sent: sent, Failed: failed}
	if resp.ArchiveKey != "" {
		outcome.ArchiveKey = &resp.ArchiveKey
	}
	if err := s.deps.Runs.Complete(ctx, claim.ID, outcome); err != nil {
		log.DatabaseError("digest.complete", err)
	}

	log.Info("weekly digest sent", "week", weekKey, "recipients", len(subscribers), "sent", sent, "failed", failed)
	if s.deps.Bus != nil {
		s.deps.Bus.Publish(ctx, events.WeeklyDigestSent{
			BaseEvent:  events.NewBaseEvent(),
			Vertical:   v.Slug,
			WeekOf:     weekKey,
			Listings:   len(listings),
			Recipients: len(subscribers),
			Sent:       sent,
			Failed:     failed,
			ArchiveKey: resp.ArchiveKey,
		})
	}
	return resp, nil
}

// Archived returns the stored browser copy of a week's digest.
func (s *Service) Archived(ctx context.Context, v *vertical.Vertical, weekKey string) ([]byte, error) {
	if s.deps.Archive == nil {
		return nil, apperr.Unavailable("Digest archive is not configured")
	}
	if _, err := time.Parse(weekKeyLayout, weekKey); err != nil {
		return nil, apperr.BadRequest("Week must be formatted as YYYY-MM-DD")
	}

	data, err := s.deps.Archive.GetObject(ctx, s.settings.Bucket, ArchiveKey(v.Slug, weekKey))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperr.NotFound("Digest not found")
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Runs lists the most recent runs for v.
func (s *Service) Runs(ctx context.Context, v *vertical.Vertical) (transport.RunListResponse, error) {
	runs, err := s.deps.Runs.ListRecent(ctx, v.Slug, recentRunsLimit)
	if err != nil {
		return transport.RunListResponse{}, err
	}
	out := transport.RunListResponse{Runs: make([]transport.RunResponse, 0, len(runs))}
	for _, run := range runs {
		out.Runs = append(out.Runs, transport.RunResponse{
			ID:         run.ID.String(),
			Vertical:   run.Vertical,
			WeekOf:     run.WeekOf.Format(weekKeyLayout),
			Recipients: run.Recipients,
			Sent:       run.Sent,
			Failed:     run.Failed,
			ArchiveKey: run.ArchiveKey,
			CreatedAt:  run.CreatedAt,
		})
	}
	return out, nil
}

// ArchiveKey is the object key of a vertical's digest for a week.
func ArchiveKey(slug, weekKey string) string {
	return "digests/" + slug + "/" + weekKey + ".html"
}

func (s *Service) topListings(ctx context.Context, v *vertical.Vertical) ([]listingsrepo.Listing, error) {
	lookback := time.Duration(s.settings.LookbackDays) * 24 * time.Hour
	listings, err := s.deps.Listings.TopForDigest(ctx, v, s.settings.Size, lookback)
	if err != nil {
		return nil, fmt.Errorf("load digest listings: %w", err)
	}
	return listings, nil
}

func (s *Service) digestFor(v *vertical.Vertical, now time.Time, listings []listingsrepo.Listing) email.Digest {
	digest := email.Digest{
		WeekOf:   now.In(s.zone).Format(weekDisplayLayout),
		Listings: make([]email.DigestListing, 0, len(listings)),
	}
	for _, l := range listings {
		digest.Listings = append(digest.Listings, email.DigestListing{
			Title:       l.Title,
			Location:    digestLocation(l),
			URL:         l.URL,
			Description: l.Description,
			Price:       l.Price,
			CashFlow:    l.CashFlow,
			Revenue:     l.Revenue,
		})
	}
	return digest
}

func digestLocation(l listingsrepo.Listing) string {
	switch {
	case l.City != "" && l.State != "":
		return l.City + ", " + l.State
	case l.State != "":
		return l.State
	default:
		return l.Location
	}
}

// archive stores the browser copy. Failures are logged and the send continues.
func (s *Service) archive(ctx context.Context, log *logger.Logger, brand email.Brand, digest email.Digest, weekKey string) (string, bool) {
	if s.deps.Archive == nil {
		return "", false
	}
	digest.ArchiveURL = ""
	_, html, err := email.RenderWeeklyDigest(brand, digest, "")
	if err != nil {
		log.Warn("digest archive render failed", "error", err)
		return "", false
	}

	key := ArchiveKey(brand.Slug, weekKey)
	if err := s.deps.Archive.PutObject(ctx, s.settings.Bucket, key, archiveContent, []byte(html)); err != nil {
		log.Warn("digest archive upload failed", "key", key, "error", err)
		return "", false
	}
	return key, true
}

func (s *Service) deliver(ctx context.Context, log *logger.Logger, brand email.Brand, digest email.Digest, recipients []subscribersrepo.Subscriber) (int, int) {
	var sent, failed atomic.Int64

	for start := 0; start < len(recipients); start += s.settings.BatchSize {
		end := min(start+s.settings.BatchSize, len(recipients))

		var g errgroup.Group
		for _, sub := range recipients[start:end] {
			g.Go(func() error {
				err := s.deps.Sender.SendWeeklyDigest(ctx, brand, sub.Email, digest, sub.UnsubscribeToken)
				metrics.DigestRecipients.WithLabelValues(brand.Slug, metrics.Status(err)).Inc()
				if err != nil {
					failed.Add(1)
					log.NotificationFailed("email", sub.Email, err)
					return nil
				}
				sent.Add(1)
				return nil
			})
		}
		_ = g.Wait()
	}
	return int(sent.Load()), int(failed.Load())
}
