// Package notify implements the outbound notification gateway contract
// (C9, spec.md §4.5, §9): bbox-subscription fan-out on place/event writes.
// The gateway is a process-wide singleton injected into flows, never
// referenced as a package global from inside use cases (spec.md §9 "Global
// state").
package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"civicmap/internal/entities"
	"civicmap/internal/metrics"
)

// PlaceNotification is what subscribers are told about a created/updated
// place that fell inside their bbox.
type PlaceNotification struct {
	PlaceID    string
	Title      string
	Categories []string
	Emails     []string
}

// EventNotification mirrors PlaceNotification for events (spec.md §4.5
// "Event notifications follow the same pattern").
type EventNotification struct {
	EventID string
	Title   string
	Emails  []string
}

// Gateway is the contract flows depend on. Calls on the write path are
// fire-and-forget: failures are logged by the implementation, never
// propagated back to the caller (spec.md §5).
type Gateway interface {
	NotifyPlaceSubscribers(ctx context.Context, n PlaceNotification) error
	NotifyEventSubscribers(ctx context.Context, n EventNotification) error
}

// Emailer is the minimal outbound transport a Gateway sends through; an
// SMTP client satisfies it in production, a recorder in tests.
type Emailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// ResilientGateway wraps an Emailer with retry (backoff) and a circuit
// breaker so a flaky SMTP relay degrades to fast failures instead of
// stalling the write path, then logs and swallows whatever remains.
type ResilientGateway struct {
	emailer Emailer
	logger  *zap.Logger
	breaker *gobreaker.CircuitBreaker
}

// NewResilientGateway builds a Gateway around emailer. name identifies the
// breaker in logs and metrics.
func NewResilientGateway(emailer Emailer, logger *zap.Logger, name string) *ResilientGateway {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &ResilientGateway{emailer: emailer, logger: logger, breaker: breaker}
}

func (g *ResilientGateway) NotifyPlaceSubscribers(ctx context.Context, n PlaceNotification) error {
	if len(n.Emails) == 0 {
		return nil
	}
	subject := "New place near you: " + n.Title
	g.send(ctx, n.Emails, subject, n.Title)
	return nil
}

func (g *ResilientGateway) NotifyEventSubscribers(ctx context.Context, n EventNotification) error {
	if len(n.Emails) == 0 {
		return nil
	}
	subject := "New event near you: " + n.Title
	g.send(ctx, n.Emails, subject, n.Title)
	return nil
}

// send retries transient failures with exponential backoff behind the
// breaker, then logs and discards (spec.md §5: "failures are logged but do
// not fail the originating write").
func (g *ResilientGateway) send(ctx context.Context, to []string, subject, body string) {
	op := func() error {
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, g.emailer.Send(ctx, to, subject, body)
		})
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		metrics.RecordNotification("error")
		g.logger.Warn("notification send failed, discarding",
			zap.Strings("to", to), zap.String("subject", subject), zap.Error(err))
		return
	}
	metrics.RecordNotification("ok")
}

// NoopGateway discards every notification; useful for flows under test
// that don't care about the fan-out side effect.
type NoopGateway struct{}

func (NoopGateway) NotifyPlaceSubscribers(ctx context.Context, n PlaceNotification) error { return nil }
func (NoopGateway) NotifyEventSubscribers(ctx context.Context, n EventNotification) error { return nil }

// RecipientsForPlace collects the deduplicated email set of every
// subscription whose bbox contains the place's location (spec.md §4.5
// boundary scenario 5). Emails appear in the order of their first matching
// subscription; the result is not sorted.
func RecipientsForPlace(subs []entities.BboxSubscription, place entities.Place) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range subs {
		if !s.Bbox.Contains(place.Location.Pos) {
			continue
		}
		if _, ok := seen[s.UserEmail]; ok {
			continue
		}
		seen[s.UserEmail] = struct{}{}
		out = append(out, s.UserEmail)
	}
	return out
}
