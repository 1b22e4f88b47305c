// Package notify publishes dead letters to an external sink as CloudEvents.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"

	"github.com/fr0stylo/webhookd/internal/app/domain"
	"github.com/fr0stylo/webhookd/internal/observability"
)

const (
	WebhookDeadLetteredType = "dev.webhookd.webhook.deadlettered"
	SyncDeadLetteredType    = "dev.webhookd.sync.deadlettered"

	defaultSource  = "webhookd"
	defaultTimeout = 5 * time.Second
)

// Options configures a CloudEvents notifier.
type Options struct {
	SinkURL    string
	Source     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// CloudEventsNotifier sends dead letters in binary HTTP mode to one sink.
type CloudEventsNotifier struct {
	client cloudevents.Client
	source string
}

// New builds a notifier targeting opts.SinkURL.
func New(opts Options) (*CloudEventsNotifier, error) {
	sink := strings.TrimSpace(opts.SinkURL)
	if sink == "" {
		return nil, fmt.Errorf("dead letter sink url is required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = observability.NewHTTPClient(timeout)
	}
	protocol, err := cloudevents.NewHTTP(
		cehttp.WithTarget(sink),
		cehttp.WithClient(*httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create cloudevents protocol: %w", err)
	}
	client, err := cloudevents.NewClient(protocol, cloudevents.WithTimeNow())
	if err != nil {
		return nil, fmt.Errorf("create cloudevents client: %w", err)
	}
	source := strings.TrimSpace(opts.Source)
	if source == "" {
		source = defaultSource
	}
	return &CloudEventsNotifier{client: client, source: source}, nil
}

func (n *CloudEventsNotifier) WebhookDeadLettered(ctx context.Context, entry domain.WebhookDeadLetter) error {
	return n.send(ctx, entry.ID, WebhookDeadLetteredType, entry.Provider, entry.ReceivedAt, entry)
}

func (n *CloudEventsNotifier) SyncDeadLettered(ctx context.Context, entry domain.SyncDeadLetter) error {
	return n.send(ctx, entry.ID, SyncDeadLetteredType, entry.JobID, entry.FailedAt, entry)
}

func (n *CloudEventsNotifier) send(ctx context.Context, id, eventType, subject string, at time.Time, data any) error {
	event := cloudevents.NewEvent()
	event.SetID(id)
	event.SetType(eventType)
	event.SetSource(n.source)
	event.SetSubject(subject)
	event.SetTime(at)
	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	result := n.client.Send(ctx, event)
	if cloudevents.IsUndelivered(result) {
		return fmt.Errorf("deliver %s event: %w", eventType, result)
	}
	if !cloudevents.IsACK(result) {
		return fmt.Errorf("sink rejected %s event: %w", eventType, result)
	}
	return nil
}
