// Webhook HTTP handlers.
//
// This file exposes the VanillaSoft webhook endpoints:
//   - POST {base}/call     (call-history event, appended)
//   - POST {base}/contact  (contact event, inserted if absent)
//
// Handlers are transport-thin: they read the raw body, decode and unwrap it,
// log what arrived, and hand the payload to the webhook service.
package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collin-ho/vs-mysql/internal/http/middleware"
	"github.com/collin-ho/vs-mysql/internal/mapping"
	"github.com/collin-ho/vs-mysql/internal/services"
)

//
// Service contracts (context-aware)
//

// WebhookService persists decoded webhook payloads.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WebhookService interface {
	// PersistCallHistory appends one call-history row.
	PersistCallHistory(ctx context.Context, p mapping.Payload) (services.Result, error)
	// PersistContact inserts a contact unless its id is already stored.
	PersistContact(ctx context.Context, p mapping.Payload) (services.Result, error)
}

// PingFunc reports whether the database is reachable.
type PingFunc func(ctx context.Context) error

//
// Handler wiring
//

// Handlers groups the webhook and informational endpoints.
type Handlers struct {
	svc      WebhookService
	ping     PingFunc
	basePath string
}

// New constructs a Handlers instance. basePath is the prefix the webhook
// routes are mounted under and is only used to describe them.
func New(svc WebhookService, ping PingFunc, basePath string) *Handlers {
	return &Handlers{svc: svc, ping: ping, basePath: basePath}
}

// Response messages.
const (
	msgCallSaved        = "Call history data saved to database"
	msgCallFailed       = "Failed to save call history data"
	msgContactSaved     = "Contact data saved to database"
	msgContactDuplicate = "Contact already exists, skipped duplicate"
	msgContactFailed    = "Failed to save contact data"
)

// WebhookResponse is returned when a webhook was processed.
type WebhookResponse struct {
	Status string `json:"status" example:"success"`
	// Human-readable outcome
	Message string `json:"message" example:"Contact data saved to database"`
	// inserted | duplicate
	Outcome string `json:"outcome" example:"inserted"`
	// Rows written by this request (0 for a duplicate contact)
	AffectedRows int64     `json:"affected_rows" example:"1"`
	Timestamp    time.Time `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// WebhookErrorResponse is returned when a webhook could not be stored.
type WebhookErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message" example:"Failed to save contact data"`
	// Underlying storage error text
	Error     string `json:"error" example:"persist webhook: dial tcp 127.0.0.1:3306: connect: connection refused"`
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
}

// ReceiveCallEvent godoc
// @ID          receiveCallEvent
// @Summary     Receive a call-history webhook
// @Description Stores one call-history row per request. Identical payloads are stored again.
// @Description The record may be sent bare or wrapped in a "contact" envelope.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       body  body  object  true  "VanillaSoft call-history payload"
//
// @Success     200  {object}  handlers.WebhookResponse       "Stored"
// @Failure     400  {object}  handlers.ErrorResponse         "Body is not a JSON object"
// @Failure     413  {object}  handlers.ErrorResponse         "Body too large"
// @Failure     500  {object}  handlers.WebhookErrorResponse  "Storage failure"
// @Router      /webhook/call [post]
func (h *Handlers) ReceiveCallEvent(c *gin.Context) {
	p, okDecode := h.readPayload(c, "call")
	if !okDecode {
		return
	}

	res, err := h.svc.PersistCallHistory(c.Request.Context(), p)
	if err != nil {
		h.persistFailed(c, "call", msgCallFailed, err)
		return
	}
	h.persisted(c, "call", msgCallSaved, res)
}

// ReceiveContactEvent godoc
// @ID          receiveContactEvent
// @Summary     Receive a contact webhook
// @Description Inserts the contact unless a row with the same contactId already exists.
// @Description A duplicate is reported with outcome "duplicate" and affected_rows 0; the stored row is not updated.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       body  body  object  true  "VanillaSoft contact payload (bare or {\"contact\": {...}})"
//
// @Success     200  {object}  handlers.WebhookResponse       "Stored or skipped as duplicate"
// @Failure     400  {object}  handlers.ErrorResponse         "Body is not a JSON object"
// @Failure     413  {object}  handlers.ErrorResponse         "Body too large"
// @Failure     500  {object}  handlers.WebhookErrorResponse  "Storage failure"
// @Router      /webhook/contact [post]
func (h *Handlers) ReceiveContactEvent(c *gin.Context) {
	p, okDecode := h.readPayload(c, "contact")
	if !okDecode {
		return
	}

	res, err := h.svc.PersistContact(c.Request.Context(), p)
	if err != nil {
		h.persistFailed(c, "contact", msgContactFailed, err)
		return
	}
	msg := msgContactSaved
	if res.Outcome == services.OutcomeDuplicate {
		msg = msgContactDuplicate
	}
	h.persisted(c, "contact", msg, res)
}

// readPayload reads, decodes and unwraps the request body. On failure it has
// already written the error response.
func (h *Handlers) readPayload(c *gin.Context, kind string) (mapping.Payload, bool) {
	lg := middleware.LoggerFrom(c)

	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodePayloadTooLarge, "request body too large")
			return nil, false
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return nil, false
	}

	p, err := mapping.Decode(raw)
	if err != nil {
		lg.Warn().Err(err).Str("kind", kind).Int("bytes", len(raw)).Msg("rejected webhook body")
		if errors.Is(err, mapping.ErrNotObject) {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "payload must be a JSON object")
		} else {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON payload")
		}
		return nil, false
	}
	p = mapping.Unwrap(p)

	lg.Info().Str("kind", kind).Int("fields", len(p)).Msg("webhook received")
	if len(bytes.TrimSpace(raw)) > 0 {
		lg.Debug().Str("kind", kind).RawJSON("body", raw).Msg("webhook body")
	}
	for _, e := range mapping.Entries(p) {
		lg.Debug().
			Str("kind", kind).
			Str("key", e.Key).
			Str("type", e.Type).
			Interface("value", e.Value).
			Msg("webhook field")
	}
	return p, true
}

func (h *Handlers) persisted(c *gin.Context, kind, msg string, res services.Result) {
	middleware.LoggerFrom(c).Info().
		Str("kind", kind).
		Str("outcome", string(res.Outcome)).
		Int64("affected_rows", res.RowsAffected).
		Msg(msg)

	ok(c, http.StatusOK, WebhookResponse{
		Status:       "success",
		Message:      msg,
		Outcome:      string(res.Outcome),
		AffectedRows: res.RowsAffected,
		Timestamp:    res.Timestamp,
	})
}

func (h *Handlers) persistFailed(c *gin.Context, kind, msg string, err error) {
	middleware.LoggerFrom(c).Error().
		Err(err).
		Str("kind", kind).
		Int("status", http.StatusInternalServerError).
		Msg(msg)

	c.AbortWithStatusJSON(http.StatusInternalServerError, WebhookErrorResponse{
		Status:    "error",
		Message:   msg,
		Error:     err.Error(),
		RequestID: requestID(c),
	})
}
