package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cloudevents/sdk-go/v2/binding"
	cehttp "github.com/cloudevents/sdk-go/v2/protocol/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr0stylo/webhookd/internal/app/domain"
)

func TestWebhookDeadLetteredSendsCloudEvent(t *testing.T) {
	received := make(chan *http.Request, 1)
	bodies := make(chan domain.WebhookDeadLetter, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		message := cehttp.NewMessageFromHttpRequest(r)
		defer func() { _ = message.Finish(nil) }()
		event, err := binding.ToEvent(r.Context(), message)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		var entry domain.WebhookDeadLetter
		if err := event.DataAs(&entry); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		received <- r
		bodies <- entry
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n, err := New(Options{SinkURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	entry := domain.WebhookDeadLetter{
		ID:             "dl-1",
		Provider:       "shopify",
		EventType:      "orders/create",
		ReceivedAt:     time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC),
		Reason:         "invalid_json",
		PayloadSnippet: "{bad",
	}
	require.NoError(t, n.WebhookDeadLettered(context.Background(), entry))

	req := <-received
	assert.Equal(t, WebhookDeadLetteredType, req.Header.Get("Ce-Type"))
	assert.Equal(t, "dl-1", req.Header.Get("Ce-Id"))
	assert.Equal(t, "shopify", req.Header.Get("Ce-Subject"))
	assert.Equal(t, entry, <-bodies)
}

func TestSyncDeadLetteredReturnsErrorOnNack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n, err := New(Options{SinkURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)

	err = n.SyncDeadLettered(context.Background(), domain.SyncDeadLetter{ID: "dl-2", JobID: "job-1", ProviderKey: "meta"})
	assert.Error(t, err)
}

func TestNewRequiresSink(t *testing.T) {
	_, err := New(Options{SinkURL: "  "})
	assert.Error(t, err)
}
