package routes

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/app/services"
	"github.com/fr0stylo/webhookd/internal/webhooks/signature"
)

// WebhookRoutes registers provider webhook endpoints and the ingestion log listings.
type WebhookRoutes struct {
	ingest          *services.WebhookIngestService
	maxPayloadBytes int64
}

// NewWebhookRoutes constructs webhook routes.
func NewWebhookRoutes(ingest *services.WebhookIngestService, maxPayloadBytes int64) *WebhookRoutes {
	if maxPayloadBytes <= 0 {
		maxPayloadBytes = 1 << 20
	}
	return &WebhookRoutes{ingest: ingest, maxPayloadBytes: maxPayloadBytes}
}

// RegisterRoutes registers webhook endpoints.
func (w *WebhookRoutes) RegisterRoutes(s *echo.Echo) {
	bodyLimit := middleware.BodyLimit(strconv.FormatInt(w.maxPayloadBytes, 10) + "B")

	s.POST("/webhooks/conversions/:provider", w.handleDelivery(signature.FamilyConversions, "provider"), bodyLimit)
	s.POST("/webhooks/crm/:provider", w.handleDelivery(signature.FamilyCRM, "provider"), bodyLimit)
	s.POST("/webhooks/shopify/:topic", w.handleDelivery(signature.FamilyCommerce, "topic"), bodyLimit)
	s.GET("/webhooks/events", w.handleListEvents)
	s.GET("/webhooks/dead-letters", w.handleListDeadLetters)
}

func (w *WebhookRoutes) handleDelivery(family signature.Family, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(io.LimitReader(c.Request().Body, w.maxPayloadBytes+1))
		if err != nil {
			return err
		}
		if int64(len(body)) > w.maxPayloadBytes {
			return apperr.ErrPayloadTooLarge
		}
		accepted, err := w.ingest.Ingest(c.Request().Context(), services.Delivery{
			Family:  family,
			Segment: c.Param(param),
			Headers: c.Request().Header,
			Body:    body,
		})
		if err != nil {
			return err
		}
		return respond(c, http.StatusAccepted, accepted)
	}
}

func (w *WebhookRoutes) handleListEvents(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	events, err := w.ingest.ListEvents(c.Request().Context(), domain.WebhookEventFilter{
		Provider: c.QueryParam("provider"),
		Status:   domain.WebhookStatus(strings.ToLower(strings.TrimSpace(c.QueryParam("status")))),
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, events)
}

func (w *WebhookRoutes) handleListDeadLetters(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	entries, err := w.ingest.ListDeadLetters(c.Request().Context(), domain.WebhookDeadLetterFilter{
		Provider: c.QueryParam("provider"),
		Reason:   c.QueryParam("reason"),
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, entries)
}

func limitParam(c echo.Context) (int, error) {
	raw := strings.TrimSpace(c.QueryParam("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, apperr.ErrValidation.WithMessage("limit must be a positive integer").
			WithDetails(map[string]any{"limit": raw})
	}
	return limit, nil
}
