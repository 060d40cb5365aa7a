package models

import (
	"encoding/json"
	"time"
)

// Webhook processing outcomes
const (
	WebhookProcessed = "processed"
	WebhookFailed    = "failed"
)

// WebhookLog is the append-only audit record of a single webhook delivery.
// One row is written per delivery regardless of outcome; rows are never
// rewritten afterwards.
type WebhookLog struct {
	ID              int             `json:"id"`
	ReceivedAt      time.Time       `json:"received_at"`
	Payload         json.RawMessage `json:"payload"`
	Status          string          `json:"status"`
	ProcessingError *string         `json:"processing_error,omitempty"`
	OrderID         *string         `json:"order_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
