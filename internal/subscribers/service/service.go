package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"exits_backend/internal/events"
	"exits_backend/internal/subscribers/repository"
	"exits_backend/internal/subscribers/transport"
	"exits_backend/platform/apperr"
	"exits_backend/platform/logger"
	"exits_backend/platform/metrics"
	"exits_backend/platform/token"
)

const (
	msgInvalidEmail = "Valid email is required"
	msgMissingToken = "Token is required"
)

// Service provides the subscription lifecycle.
type Service struct {
	repo     repository.Repository
	eventBus events.Bus
	log      *logger.Logger
	newToken func() (string, error)
}

// New creates a new subscribers service.
func New(repo repository.Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log, newToken: token.New}
}

// NormalizeEmail trims and lowercases an address and rejects values without "@".
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !strings.Contains(email, "@") {
		return "", apperr.Validation(msgInvalidEmail)
	}
	return email, nil
}

// Subscribe registers email for vertical's digest and sends a confirmation
// link unless the address is already an active subscriber.
func (s *Service) Subscribe(ctx context.Context, rawEmail, vertical string) (transport.SubscribeResponse, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return transport.SubscribeResponse{}, err
	}

	params, err := s.newParams(email, vertical)
	if err != nil {
		return transport.SubscribeResponse{}, err
	}

	sub, err := s.repo.UpsertPending(ctx, params)
	if err != nil {
		return transport.SubscribeResponse{}, err
	}

	if sub.Active() {
		metrics.Subscriptions.WithLabelValues("already_confirmed").Inc()
		return transport.SubscribeResponse{
			Success:          true,
			Message:          "You're already subscribed",
			AlreadyConfirmed: true,
		}, nil
	}

	metrics.Subscriptions.WithLabelValues("requested").Inc()
	s.eventBus.Publish(ctx, events.SubscriptionRequested{
		BaseEvent:    events.NewBaseEvent(),
		SubscriberID: sub.ID,
		Vertical:     sub.Vertical,
		Email:        sub.Email,
		ConfirmToken: sub.ConfirmToken,
	})

	return transport.SubscribeResponse{
		Success: true,
		Message: "Check your inbox to confirm your subscription",
	}, nil
}

// Confirm redeems a confirmation token. Redeeming a token twice succeeds.
func (s *Service) Confirm(ctx context.Context, confirmToken string) (transport.ConfirmResponse, error) {
	confirmToken = strings.TrimSpace(confirmToken)
	if confirmToken == "" {
		return transport.ConfirmResponse{}, apperr.Validation(msgMissingToken)
	}

	sub, activated, err := s.repo.ConfirmByToken(ctx, confirmToken)
	if err != nil {
		return transport.ConfirmResponse{}, err
	}

	// Link scanners and repeat clicks redeem the token again; only the
	// first activation sends the welcome email.
	if activated {
		metrics.Subscriptions.WithLabelValues("confirmed").Inc()
		s.eventBus.Publish(ctx, events.SubscriptionConfirmed{
			BaseEvent:        events.NewBaseEvent(),
			SubscriberID:     sub.ID,
			Vertical:         sub.Vertical,
			Email:            sub.Email,
			UnsubscribeToken: sub.UnsubscribeToken,
		})
	}

	return transport.ConfirmResponse{
		Success: true,
		Email:   sub.Email,
		Message: "Subscription confirmed",
	}, nil
}

// LookupUnsubscribe returns the address behind an unsubscribe token.
func (s *Service) LookupUnsubscribe(ctx context.Context, unsubscribeToken string) (transport.UnsubscribeLookupResponse, error) {
	unsubscribeToken = strings.TrimSpace(unsubscribeToken)
	if unsubscribeToken == "" {
		return transport.UnsubscribeLookupResponse{}, apperr.Validation(msgMissingToken)
	}

	sub, err := s.repo.GetByUnsubscribeToken(ctx, unsubscribeToken)
	if err != nil {
		return transport.UnsubscribeLookupResponse{}, err
	}

	resp := transport.UnsubscribeLookupResponse{Email: sub.Email, Unsubscribed: sub.UnsubscribedAt != nil}
	if sub.UnsubscribedAt != nil {
		resp.UnsubscribedAt = sub.UnsubscribedAt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// Unsubscribe stamps unsubscribed_at. It is idempotent.
func (s *Service) Unsubscribe(ctx context.Context, unsubscribeToken string) (transport.UnsubscribeResponse, error) {
	unsubscribeToken = strings.TrimSpace(unsubscribeToken)
	if unsubscribeToken == "" {
		return transport.UnsubscribeResponse{}, apperr.Validation(msgMissingToken)
	}

	sub, stamped, err := s.repo.UnsubscribeByToken(ctx, unsubscribeToken)
	if err != nil {
		return transport.UnsubscribeResponse{}, err
	}

	if stamped {
		metrics.Subscriptions.WithLabelValues("unsubscribed").Inc()
		s.eventBus.Publish(ctx, events.Unsubscribed{
			BaseEvent:    events.NewBaseEvent(),
			SubscriberID: sub.ID,
			Vertical:     sub.Vertical,
			Email:        sub.Email,
		})
	}

	return transport.UnsubscribeResponse{
		Success: true,
		Email:   sub.Email,
		Message: "You have been unsubscribed",
	}, nil
}

// UpsertConfirmed subscribes email as already confirmed. Lead capture uses it
// because the buyer has just proven the address by requesting details.
func (s *Service) UpsertConfirmed(ctx context.Context, rawEmail, vertical string) (repository.Subscriber, error) {
	email, err := NormalizeEmail(rawEmail)
	if err != nil {
		return repository.Subscriber{}, err
	}
	params, err := s.newParams(email, vertical)
	if err != nil {
		return repository.Subscriber{}, err
	}
	sub, err := s.repo.UpsertConfirmed(ctx, params)
	if err != nil {
		return repository.Subscriber{}, err
	}
	metrics.Subscriptions.WithLabelValues("lead_capture").Inc()
	return sub, nil
}

// ListActive returns the digest audience for vertical.
func (s *Service) ListActive(ctx context.Context, vertical string) ([]repository.Subscriber, error) {
	return s.repo.ListActive(ctx, vertical)
}

func (s *Service) newParams(email, vertical string) (repository.UpsertParams, error) {
	confirmToken, err := s.newToken()
	if err != nil {
		return repository.UpsertParams{}, apperr.Wrap(apperr.KindInternal, "token generation failed", err)
	}
	unsubscribeToken, err := s.newToken()
	if err != nil {
		return repository.UpsertParams{}, apperr.Wrap(apperr.KindInternal, "token generation failed", err)
	}
	return repository.UpsertParams{
		ID:               uuid.New(),
		Email:            email,
		Vertical:         vertical,
		ConfirmToken:     confirmToken,
		UnsubscribeToken: unsubscribeToken,
	}, nil
}
