package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fr0stylo/webhookd/internal/app/apperr"
	"github.com/fr0stylo/webhookd/internal/app/services"
)

const startedAtKey = "webhookd.started_at"

type envelope struct {
	OK        bool           `json:"ok"`
	RequestID string         `json:"requestId"`
	Data      any            `json:"data,omitempty"`
	Error     *envelopeError `json:"error,omitempty"`
	Meta      envelopeMeta   `json:"meta"`
}

type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type envelopeMeta struct {
	DurationMS int64  `json:"durationMs"`
	Timestamp  string `json:"timestamp"`
}

// StartTimer records the request start so envelopes can report their duration.
func StartTimer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(startedAtKey, time.Now())
			return next(c)
		}
	}
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{
		OK:        true,
		RequestID: requestID(c),
		Data:      data,
		Meta:      meta(c),
	})
}

// ErrorHandler renders every handler and middleware error as an error envelope.
// Unexposed errors are logged with their cause and returned with a generic message.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr := classify(err)
		switch {
		case !appErr.Exposed || appErr.Status >= http.StatusInternalServerError:
			log.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"code", appErr.Code,
				"error", err,
			)
		case services.IsRejection(err):
			log.InfoContext(c.Request().Context(), "webhook delivery rejected",
				"path", c.Request().URL.Path,
				"code", appErr.Code,
			)
		}
		body := envelope{
			RequestID: requestID(c),
			Error: &envelopeError{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			},
			Meta: meta(c),
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(appErr.Status)
		} else {
			err = c.JSON(appErr.Status, body)
		}
		if err != nil {
			log.ErrorContext(c.Request().Context(), "write error response failed", "error", err)
		}
	}
}

func classify(err error) *apperr.Error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.Code {
		case http.StatusNotFound:
			return apperr.ErrNotFound.WithMessage("route not found")
		case http.StatusMethodNotAllowed:
			return apperr.New(apperr.CodeNotFound, http.StatusMethodNotAllowed, "method not allowed")
		case http.StatusRequestEntityTooLarge:
			return apperr.ErrPayloadTooLarge
		case http.StatusTooManyRequests:
			return apperr.ErrRateLimited
		}
		if httpErr.Code >= http.StatusBadRequest && httpErr.Code < http.StatusInternalServerError {
			message, _ := httpErr.Message.(string)
			if message == "" {
				message = http.StatusText(httpErr.Code)
			}
			return apperr.New(apperr.CodeValidationFailed, httpErr.Code, message)
		}
		return apperr.Internal(err)
	}
	return apperr.From(err)
}

func meta(c echo.Context) envelopeMeta {
	now := time.Now()
	var duration time.Duration
	if started, ok := c.Get(startedAtKey).(time.Time); ok {
		duration = now.Sub(started)
	}
	return envelopeMeta{
		DurationMS: duration.Milliseconds(),
		Timestamp:  now.UTC().Format(time.RFC3339Nano),
	}
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
