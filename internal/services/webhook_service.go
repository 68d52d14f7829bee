// Package services – WebhookService
//
// This file implements WebhookService, which turns a decoded VanillaSoft
// payload into a stored row. Call-history events are appended unconditionally;
// contact events are inserted only when no row with the same contact id exists.
//
// Observability: both operations are OpenTelemetry-instrumented and counted in
// the vanillasoft_webhook_events_total Prometheus counter.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/collin-ho/vs-mysql/internal/domain"
	"github.com/collin-ho/vs-mysql/internal/mapping"
)

// Outcome reports what a persist call did with the payload.
type Outcome string

const (
	// OutcomeInserted means a new row was written.
	OutcomeInserted Outcome = "inserted"
	// OutcomeDuplicate means the contact already existed and nothing was written.
	OutcomeDuplicate Outcome = "duplicate"
)

// Result is the summary of a successful persist call.
type Result struct {
	Outcome      Outcome
	RowsAffected int64
	Timestamp    time.Time
}

// WebhookRepo defines the repository contract required by WebhookService.
type WebhookRepo interface {
	// InsertCallHistory appends one call-history row.
	InsertCallHistory(ctx context.Context, db *gorm.DB, rec *domain.CallHistory) error

	// InsertContactIfAbsent inserts c unless its contact id is already stored
	// and returns the number of rows written (1 or 0).
	InsertContactIfAbsent(ctx context.Context, db *gorm.DB, c *domain.Contact) (int64, error)
}

// WebhookService persists VanillaSoft call and contact events.
type WebhookService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the webhook repository used by this service.
	Repo WebhookRepo

	// Now returns the timestamp reported in results. Defaults to time.Now.
	Now func() time.Time
}

// NewWebhookService constructs a WebhookService.
func NewWebhookService(db *gorm.DB, r WebhookRepo) *WebhookService {
	return &WebhookService{DB: db, Repo: r, Now: time.Now}
}

// PersistCallHistory maps p onto a call_history row and inserts it. Identical
// payloads produce identical, separate rows.
func (s *WebhookService) PersistCallHistory(ctx context.Context, p mapping.Payload) (Result, error) {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "PersistCallHistory",
		trace.WithAttributes(attribute.Int("payload.keys", len(p))),
	)
	defer span.End()

	var rec domain.CallHistory
	if err := mapping.Apply(ctx, p, mapping.CallHistoryFields, &rec); err != nil {
		return Result{}, s.failed(span, kindCall, fmt.Errorf("%w: %v", ErrMapping, err))
	}
	if rec.ContactID != nil {
		span.SetAttributes(attribute.String("contact.id", *rec.ContactID))
	}

	if err := s.Repo.InsertCallHistory(ctx, s.DB, &rec); err != nil {
		return Result{}, s.failed(span, kindCall, fmt.Errorf("%w: %v", ErrPersist, err))
	}

	webhookEvents.WithLabelValues(kindCall, string(OutcomeInserted)).Inc()
	return Result{Outcome: OutcomeInserted, RowsAffected: 1, Timestamp: s.now()}, nil
}

// PersistContact maps p onto a contacts row and inserts it unless the contact
// id is already stored. A duplicate is not an error: the result reports
// OutcomeDuplicate with zero rows affected and the stored row is left as is.
func (s *WebhookService) PersistContact(ctx context.Context, p mapping.Payload) (Result, error) {
	tr := otel.Tracer("services/WebhookService")
	ctx, span := tr.Start(ctx, "PersistContact",
		trace.WithAttributes(attribute.Int("payload.keys", len(p))),
	)
	defer span.End()

	var c domain.Contact
	if err := mapping.Apply(ctx, p, mapping.ContactFields, &c); err != nil {
		return Result{}, s.failed(span, kindContact, fmt.Errorf("%w: %v", ErrMapping, err))
	}
	if c.ContactID != nil {
		span.SetAttributes(attribute.String("contact.id", *c.ContactID))
	}

	n, err := s.Repo.InsertContactIfAbsent(ctx, s.DB, &c)
	if err != nil {
		return Result{}, s.failed(span, kindContact, fmt.Errorf("%w: %v", ErrPersist, err))
	}

	outcome := OutcomeInserted
	if n == 0 {
		outcome = OutcomeDuplicate
	}
	span.SetAttributes(attribute.String("webhook.outcome", string(outcome)))
	webhookEvents.WithLabelValues(kindContact, string(outcome)).Inc()
	return Result{Outcome: outcome, RowsAffected: n, Timestamp: s.now()}, nil
}

func (s *WebhookService) failed(span trace.Span, kind string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	webhookEvents.WithLabelValues(kind, outcomeError).Inc()
	return err
}

func (s *WebhookService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
