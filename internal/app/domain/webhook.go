package domain

import "time"

// WebhookStatus is the ingestion outcome of one delivery.
type WebhookStatus string

const (
	WebhookAccepted WebhookStatus = "accepted"
	WebhookRejected WebhookStatus = "rejected"
)

// WebhookEvent records one ingestion attempt.
type WebhookEvent struct {
	ID          string        `json:"id"`
	Provider    string        `json:"provider"`
	EventType   string        `json:"eventType"`
	SourceID    string        `json:"sourceId,omitempty"`
	ReceivedAt  time.Time     `json:"receivedAt"`
	PayloadHash string        `json:"payloadHash"`
	PayloadSize int           `json:"payloadSize"`
	Status      WebhookStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
}

// WebhookDeadLetter is a delivery that failed after authentication and replay checks.
type WebhookDeadLetter struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	EventType      string    `json:"eventType"`
	ReceivedAt     time.Time `json:"receivedAt"`
	Reason         string    `json:"reason"`
	PayloadSnippet string    `json:"payloadSnippet"`
}

// WebhookEventFilter narrows event listings.
type WebhookEventFilter struct {
	Provider string
	Status   WebhookStatus
	Limit    int
}

// WebhookDeadLetterFilter narrows dead-letter listings.
type WebhookDeadLetterFilter struct {
	Provider string
	Reason   string
	Limit    int
}
